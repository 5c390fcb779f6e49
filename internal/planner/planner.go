// Package planner resolves a validated parameter set into a complete
// provisioning plan: the active resource graph, role bindings, optional
// private-endpoint groups, and the projected runtime environment. Resolution
// is a single pass over immutable input with no I/O; resolving the same
// parameters twice yields identical plans.
package planner

import (
	"github.com/ragops/planner/internal/graph"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/topology"
)

// Plan is the complete resolver output consumed by the external apply engine
// and by the runtime application (through Environment).
type Plan struct {
	Params *params.Set `json:"params"`
	Token  string      `json:"token"`

	Nodes      []*graph.Node `json:"nodes"`
	ApplyOrder []string      `json:"applyOrder"`

	RoleBindings     []RoleBinding   `json:"roleBindings"`
	PrivateEndpoints []EndpointGroup `json:"privateEndpoints,omitempty"`

	Environment map[string]string `json:"environment"`
	Operator    OperatorRecord    `json:"operator"`
}

// Resolve validates the parameter set and produces a plan, or fails before
// producing any output. There is no partial result: every error path returns
// a nil plan.
func Resolve(p *params.Set) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	t, err := topology.Resolve(p)
	if err != nil {
		return nil, err
	}

	g, err := buildGraph(t)
	if err != nil {
		return nil, err
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	return &Plan{
		Params:           p,
		Token:            t.Token,
		Nodes:            g.Nodes(),
		ApplyOrder:       order,
		RoleBindings:     planRoleBindings(t, g),
		PrivateEndpoints: planPrivateEndpoints(t, g),
		Environment:      assembleEnvironment(t, g),
		Operator:         assembleOperatorRecord(t, g),
	}, nil
}
