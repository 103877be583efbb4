package policy

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	userdomain "brokerops/client/internal/user/domain"
)

// accessRegoPolicy is the role/capability table. This module is the one place
// role strings are enumerated; unknown roles fall through to the defaults.
const accessRegoPolicy = `package brokerops.access

default view_admin_screens = false
default view_operational_screens = false

view_admin_screens if {
	input.role == "admin"
}

view_operational_screens if {
	input.role == "encoder"
}

view_operational_screens if {
	input.role == "broker"
}

view_operational_screens if {
	input.role == "supervisor"
}

view_operational_screens if {
	input.role == "manager"
}
`

// OPAEvaluator evaluates the role/capability table using the in-process OPA
// Rego engine. The module is compiled once at construction.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the embedded access policy and returns an evaluator.
func NewOPAEvaluator() (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": accessRegoPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// Capabilities evaluates the capability set for role. Evaluation failures
// degrade to an empty set (deny), never an error; gating must not crash on a
// role string the table has never seen.
func (e *OPAEvaluator) Capabilities(ctx context.Context, role userdomain.Role) Capabilities {
	input := map[string]interface{}{"role": string(role)}
	return Capabilities{
		ViewAdminScreens:       e.queryBool(ctx, "data.brokerops.access.view_admin_screens", input),
		ViewOperationalScreens: e.queryBool(ctx, "data.brokerops.access.view_operational_screens", input),
	}
}

func (e *OPAEvaluator) queryBool(ctx context.Context, query string, input map[string]interface{}) bool {
	q := rego.New(
		rego.Query(query),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		log.Printf("policy: evaluate %s: %v", query, err)
		return false
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	return ok && v
}

// HealthCheck verifies the compiled policy evaluates for a known role.
// Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	caps := e.Capabilities(ctx, userdomain.RoleAdmin)
	if !caps.ViewAdminScreens {
		return fmt.Errorf("access policy did not grant admin capability to admin role")
	}
	return nil
}
