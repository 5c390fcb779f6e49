package graph

import (
	appErr "github.com/ragops/planner/pkg/errors"
)

// Kind tags the provisionable unit a node represents.
type Kind string

const (
	KindResourceGroup        Kind = "resource-group"
	KindMonitorWorkspace     Kind = "monitoring-workspace"
	KindMonitorInsights      Kind = "monitoring-insights"
	KindMonitorDashboard     Kind = "monitoring-dashboard"
	KindHostingPlan          Kind = "hosting-plan"
	KindHostingApp           Kind = "hosting-app"
	KindContainerRegistry    Kind = "container-registry"
	KindContainerEnvironment Kind = "container-environment"
	KindContainerApp         Kind = "container-app"
	KindIdentity             Kind = "identity"
	KindModelAccount         Kind = "model-account"
	KindSearchService        Kind = "search-service"
	KindStorageAccount       Kind = "storage-account"
	KindVisionAccount        Kind = "vision-account"
	KindDocExtraction        Kind = "document-extraction"
	KindSpeechAccount        Kind = "speech-account"
	KindVirtualNetwork       Kind = "virtual-network"
)

// Scope identifies the resource group a node is created in. External is true
// when the group was named by the caller rather than created for the
// environment.
type Scope struct {
	ResourceGroup string `json:"resourceGroup"`
	External      bool   `json:"external"`
}

// ResolveScope applies the resolved-or-fallback rule: a non-empty override
// names an external group, otherwise the node lands in the primary group.
func ResolveScope(override, primary string) Scope {
	if override != "" {
		return Scope{ResourceGroup: override, External: true}
	}
	return Scope{ResourceGroup: primary}
}

// ModelDeployment is one hosted model deployment attached to a model account.
type ModelDeployment struct {
	Name         string `json:"name"`
	ModelFamily  string `json:"modelFamily"`
	ModelName    string `json:"modelName"`
	ModelVersion string `json:"modelVersion"`
	Capacity     int    `json:"capacity"`
}

// Node is one provisionable unit in the resolved plan. Nodes are only added
// to a Graph when their activation predicate held, so presence in the graph
// implies active.
type Node struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Name        string            `json:"name"`
	Scope       Scope             `json:"scope"`
	Location    string            `json:"location,omitempty"`
	DependsOn   []string          `json:"dependsOn,omitempty"`
	Deployments []ModelDeployment `json:"deployments,omitempty"`
}

// AttachDeployment adds a model deployment, enforcing name uniqueness within
// the account.
func (n *Node) AttachDeployment(d ModelDeployment) error {
	for _, existing := range n.Deployments {
		if existing.Name == d.Name {
			return appErr.Newf(appErr.CodeConflict, "duplicate model deployment %q on %q", d.Name, n.ID)
		}
	}
	n.Deployments = append(n.Deployments, d)
	return nil
}

// Graph is a directed acyclic dependency graph of resource nodes. Insertion
// order is preserved so repeated resolution emits nodes in identical order.
type Graph struct {
	nodes map[string]*Node
	order []string
}

func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add inserts a node. Duplicate IDs indicate a catalog bug.
func (g *Graph) Add(n *Node) error {
	if _, ok := g.nodes[n.ID]; ok {
		return appErr.Newf(appErr.CodeInternal, "duplicate node id %q", n.ID)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether a node with the given ID is active in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// AddDependency records that node `id` must be applied after node `dependsOn`.
// Both endpoints must already be in the graph: an edge to an absent node is a
// dangling reference and rejected outright.
func (g *Graph) AddDependency(id, dependsOn string) error {
	if id == dependsOn {
		return appErr.Newf(appErr.CodeCycle, "self-referential dependency on %q", id)
	}
	n, ok := g.nodes[id]
	if !ok {
		return appErr.Newf(appErr.CodeInternal, "dependency source %q not in graph", id)
	}
	if _, ok := g.nodes[dependsOn]; !ok {
		return appErr.Newf(appErr.CodeInternal, "dependency target %q not in graph", dependsOn)
	}
	for _, existing := range n.DependsOn {
		if existing == dependsOn {
			return nil
		}
	}
	n.DependsOn = append(n.DependsOn, dependsOn)
	return nil
}

// DetectCycles runs a depth-first search over dependency edges and fails on
// the first cycle found. A cycle means the template catalog is wrong, not the
// caller's input.
func (g *Graph) DetectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return appErr.Newf(appErr.CodeCycle, "dependency cycle involving node %q", id)
		}
		temporary[id] = true
		for _, dep := range g.nodes[id].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, id := range g.order {
		if !permanent[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalOrder returns node IDs such that every node appears after all of
// its dependencies. Ties are broken by insertion order, keeping the result
// deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, id := range g.order {
		indegree[id] = len(g.nodes[id].DependsOn)
		for _, dep := range g.nodes[id].DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return out, nil
}
