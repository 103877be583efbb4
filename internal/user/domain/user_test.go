package domain

import "testing"

func TestRole_Known(t *testing.T) {
	for _, r := range []Role{RoleEncoder, RoleBroker, RoleSupervisor, RoleManager, RoleAdmin} {
		if !r.Known() {
			t.Errorf("Known(%q) = false, want true", r)
		}
	}
	for _, r := range []Role{"", "superadmin", "Encoder", "root"} {
		if r.Known() {
			t.Errorf("Known(%q) = true, want false", r)
		}
	}
}

func TestRole_Operational(t *testing.T) {
	if RoleAdmin.Operational() {
		t.Error("admin must not be operational")
	}
	if !RoleBroker.Operational() {
		t.Error("broker is operational")
	}
}

func TestUser_Assignable(t *testing.T) {
	cases := []struct {
		name string
		u    *User
		want bool
	}{
		{"active encoder", &User{ID: 1, Role: RoleEncoder, Active: true}, true},
		{"deactivated encoder", &User{ID: 2, Role: RoleEncoder, Active: false}, false},
		{"active admin", &User{ID: 3, Role: RoleAdmin, Active: true}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.Assignable(); got != tc.want {
				t.Errorf("Assignable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUser_Validate(t *testing.T) {
	u := &User{ID: 1, Email: "e@example.com", Role: RoleEncoder}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (&User{ID: 2, Role: RoleEncoder}).Validate(); err == nil {
		t.Error("missing email should fail validation")
	}
	if err := (&User{ID: 3, Email: "e@example.com", Role: "ops"}).Validate(); err == nil {
		t.Error("unknown role should fail validation")
	}
}
