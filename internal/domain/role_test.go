package domain

import "testing"

func TestIsApprover(t *testing.T) {
	want := map[string]bool{
		RoleEmployee: false,
		RoleManager:  true,
		RoleHR:       true,
		RoleAdmin:    true,
		"GUEST":      false,
	}
	for role, exp := range want {
		if got := IsApprover(role); got != exp {
			t.Errorf("IsApprover(%q) = %v, want %v", role, got, exp)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole(RoleHR) {
		t.Error("HR should be valid")
	}
	if IsValidRole("hr") {
		t.Error("roles are case sensitive")
	}
}
