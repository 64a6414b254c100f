package domain

import "fmt"

// Role is the caller's role as forwarded by the authentication gate.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleMedicalStaff Role = "medical-staff"
	RoleRegularStaff Role = "regular-staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMedicalStaff, RoleRegularStaff:
		return true
	}
	return false
}

// CanMutateInventory reports whether the role may record donations,
// dispatch units or dispose expired ones.
func (r Role) CanMutateInventory() bool {
	return r == RoleAdmin || r == RoleMedicalStaff
}

// CanDeleteDonors reports whether the role may remove donor records.
func (r Role) CanDeleteDonors() bool {
	return r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrUnauthorized, s)
	}
	return r, nil
}
