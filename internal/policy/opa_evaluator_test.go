package policy

import (
	"context"
	"testing"

	userdomain "brokerops/client/internal/user/domain"
)

func newTestEvaluator(t *testing.T) *OPAEvaluator {
	t.Helper()
	e, err := NewOPAEvaluator()
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	return e
}

func TestCapabilities_Admin(t *testing.T) {
	e := newTestEvaluator(t)
	caps := e.Capabilities(context.Background(), userdomain.RoleAdmin)
	if !caps.ViewAdminScreens {
		t.Error("admin must hold view_admin_screens")
	}
	if caps.ViewOperationalScreens {
		t.Error("admin must not hold view_operational_screens")
	}
	if HomeFor(caps) != HomeAdmin {
		t.Error("admin home must be the admin screen group")
	}
}

func TestCapabilities_OperationalRoles(t *testing.T) {
	e := newTestEvaluator(t)
	for _, r := range []userdomain.Role{
		userdomain.RoleEncoder,
		userdomain.RoleBroker,
		userdomain.RoleSupervisor,
		userdomain.RoleManager,
	} {
		caps := e.Capabilities(context.Background(), r)
		if !caps.ViewOperationalScreens {
			t.Errorf("%s must hold view_operational_screens", r)
		}
		if caps.ViewAdminScreens {
			t.Errorf("%s must not hold view_admin_screens", r)
		}
		if HomeFor(caps) != HomeOperational {
			t.Errorf("%s home must be the operational screen group", r)
		}
	}
}

func TestCapabilities_UnknownRoleDenied(t *testing.T) {
	e := newTestEvaluator(t)
	for _, r := range []userdomain.Role{"", "superuser", "Admin", "root"} {
		caps := e.Capabilities(context.Background(), r)
		if !caps.None() {
			t.Errorf("unknown role %q must have no capabilities", r)
		}
		if HomeFor(caps) != HomeNone {
			t.Errorf("unknown role %q must have no home", r)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	e := newTestEvaluator(t)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
