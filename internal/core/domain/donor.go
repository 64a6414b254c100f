package domain

import "time"

// Donor is a directory entry. Document fields hold opaque references to
// uploaded files; storage of the files themselves is external.
type Donor struct {
	ID          int64
	FullName    string
	Age         int
	WeightKg    float64
	BloodType   BloodType
	Phone       string
	IDDocument  string
	ClinicalDoc string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
