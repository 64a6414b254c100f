package domain

import "fmt"

// BloodType is one of the 8 canonical ABO/Rh types.
type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

// AllBloodTypes returns the 8 types in display order. The inventory table
// holds exactly one row per entry, seeded by migration.
func AllBloodTypes() []BloodType {
	return []BloodType{
		BloodAPos, BloodANeg,
		BloodBPos, BloodBNeg,
		BloodABPos, BloodABNeg,
		BloodOPos, BloodONeg,
	}
}

func (b BloodType) Valid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
		BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

func ParseBloodType(s string) (BloodType, error) {
	b := BloodType(s)
	if !b.Valid() {
		return "", fmt.Errorf("%w: unknown blood type %q", ErrValidation, s)
	}
	return b, nil
}
