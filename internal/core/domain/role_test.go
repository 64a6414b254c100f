package domain

import (
	"errors"
	"testing"
)

func TestRoleAuthorizationMatrix(t *testing.T) {
	cases := []struct {
		role            Role
		mutateInventory bool
		deleteDonors    bool
	}{
		{RoleAdmin, true, true},
		{RoleMedicalStaff, true, false},
		{RoleRegularStaff, false, false},
	}

	for _, tc := range cases {
		if got := tc.role.CanMutateInventory(); got != tc.mutateInventory {
			t.Errorf("%s: CanMutateInventory = %v, want %v", tc.role, got, tc.mutateInventory)
		}
		if got := tc.role.CanDeleteDonors(); got != tc.deleteDonors {
			t.Errorf("%s: CanDeleteDonors = %v, want %v", tc.role, got, tc.deleteDonors)
		}
	}
}

func TestParseRole_Unknown(t *testing.T) {
	for _, s := range []string{"", "superuser", "Admin"} {
		if _, err := ParseRole(s); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("ParseRole(%q): expected ErrUnauthorized, got %v", s, err)
		}
	}
}
