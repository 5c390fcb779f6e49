package planner

import (
	"github.com/ragops/planner/internal/graph"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/topology"
	appErr "github.com/ragops/planner/pkg/errors"
)

// Stable node identifiers. Dependency edges, role rows, and endpoint groups
// all reference nodes through these.
const (
	nodeMonitorWorkspace = "monitor-workspace"
	nodeMonitorInsights  = "monitor-insights"
	nodeMonitorDashboard = "monitor-dashboard"
	nodeVirtualNetwork   = "vnet"
	nodeHostingPlan      = "hosting-plan"
	nodeBackendIdentity  = "backend-identity"
	nodeRegistry         = "registry"
	nodeContainerEnv     = "container-env"
	nodeBackendApp       = "backend-app"
	nodeModelAccount     = "openai"
	nodeDocExtraction    = "doc-extraction"
	nodeVision           = "vision"
	nodeSpeech           = "speech"
	nodeSearch           = "search"
	nodeStorage          = "storage"
	nodeUserStorage      = "user-storage"
)

type predicate func(*topology.Topology) bool

func always(*topology.Topology) bool { return true }

func appServiceHosted(t *topology.Topology) bool {
	return t.Params.DeploymentTarget == params.TargetAppService
}

func containerHosted(t *topology.Topology) bool {
	return t.Params.DeploymentTarget == params.TargetContainerApps
}

func monitoringEnabled(t *topology.Topology) bool { return t.Params.UseApplicationInsights }

func privateNetworking(t *topology.Topology) bool {
	// Network isolation is only wired for the app-service partition; the
	// container partition has no equivalent yet.
	return t.Params.UsePrivateEndpoint && appServiceHosted(t)
}

// edge declares a dependency from the owning template to target, guarded by
// its own predicate. An edge whose predicate holds while its target is absent
// is a catalog bug, not a runtime condition.
type edge struct {
	target string
	when   predicate
}

// template is one row of the fixed resource catalog. Catalog order is apply
// order for independent nodes and must stay stable: plan output order depends
// on it.
type template struct {
	id       string
	kind     func(*topology.Topology) graph.Kind
	active   predicate
	name     func(*topology.Topology) string
	scope    func(*topology.Topology) graph.Scope
	location func(*topology.Topology) string
	edges    []edge
}

func fixedKind(k graph.Kind) func(*topology.Topology) graph.Kind {
	return func(*topology.Topology) graph.Kind { return k }
}

func primaryScope(t *topology.Topology) graph.Scope {
	return graph.Scope{ResourceGroup: t.Names.ResourceGroup}
}

func primaryLocation(t *topology.Topology) string { return t.Params.Location }

// catalog is the full resource template set, walked in order on every build.
var catalog = []template{
	{
		id:       nodeMonitorWorkspace,
		kind:     fixedKind(graph.KindMonitorWorkspace),
		active:   monitoringEnabled,
		name:     func(t *topology.Topology) string { return t.Names.LogAnalytics },
		scope:    primaryScope,
		location: primaryLocation,
	},
	{
		id:       nodeMonitorInsights,
		kind:     fixedKind(graph.KindMonitorInsights),
		active:   monitoringEnabled,
		name:     func(t *topology.Topology) string { return t.Names.AppInsights },
		scope:    primaryScope,
		location: primaryLocation,
		edges:    []edge{{target: nodeMonitorWorkspace}},
	},
	{
		id:       nodeMonitorDashboard,
		kind:     fixedKind(graph.KindMonitorDashboard),
		active:   monitoringEnabled,
		name:     func(t *topology.Topology) string { return t.Names.Dashboard },
		scope:    primaryScope,
		location: primaryLocation,
		edges:    []edge{{target: nodeMonitorInsights}},
	},
	{
		id:       nodeVirtualNetwork,
		kind:     fixedKind(graph.KindVirtualNetwork),
		active:   privateNetworking,
		name:     func(t *topology.Topology) string { return t.Names.VirtualNetwork },
		scope:    primaryScope,
		location: primaryLocation,
	},
	{
		id:       nodeHostingPlan,
		kind:     fixedKind(graph.KindHostingPlan),
		active:   appServiceHosted,
		name:     func(t *topology.Topology) string { return t.Names.HostingPlan },
		scope:    primaryScope,
		location: primaryLocation,
	},
	{
		id:       nodeBackendIdentity,
		kind:     fixedKind(graph.KindIdentity),
		active:   containerHosted,
		name:     func(t *topology.Topology) string { return t.Names.Identity },
		scope:    primaryScope,
		location: primaryLocation,
	},
	{
		id:       nodeRegistry,
		kind:     fixedKind(graph.KindContainerRegistry),
		active:   containerHosted,
		name:     func(t *topology.Topology) string { return t.Names.Registry },
		scope:    primaryScope,
		location: primaryLocation,
	},
	{
		id:       nodeContainerEnv,
		kind:     fixedKind(graph.KindContainerEnvironment),
		active:   containerHosted,
		name:     func(t *topology.Topology) string { return t.Names.ContainerEnv },
		scope:    primaryScope,
		location: primaryLocation,
		edges: []edge{
			{target: nodeMonitorWorkspace, when: monitoringEnabled},
		},
	},
	{
		id: nodeBackendApp,
		kind: func(t *topology.Topology) graph.Kind {
			if containerHosted(t) {
				return graph.KindContainerApp
			}
			return graph.KindHostingApp
		},
		active:   always,
		name:     func(t *topology.Topology) string { return t.Names.BackendApp },
		scope:    primaryScope,
		location: primaryLocation,
		edges: []edge{
			{target: nodeHostingPlan, when: appServiceHosted},
			{target: nodeRegistry, when: containerHosted},
			{target: nodeContainerEnv, when: containerHosted},
			{target: nodeBackendIdentity, when: containerHosted},
			{target: nodeMonitorInsights, when: monitoringEnabled},
			{target: nodeVirtualNetwork, when: privateNetworking},
		},
	},
	{
		id:     nodeModelAccount,
		kind:   fixedKind(graph.KindModelAccount),
		active: func(t *topology.Topology) bool { return t.DeployModelAccount },
		name:   func(t *topology.Topology) string { return t.Names.OpenAI },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.OpenAIResourceGroupName, t.Names.ResourceGroup)
		},
		location: func(t *topology.Topology) string { return t.Params.OpenAILocation },
	},
	{
		id:     nodeDocExtraction,
		kind:   fixedKind(graph.KindDocExtraction),
		active: always,
		name:   func(t *topology.Topology) string { return t.Names.DocExtraction },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.DocumentIntelligenceResourceGroupName, t.Names.ResourceGroup)
		},
		location: func(t *topology.Topology) string { return t.Params.DocumentIntelligenceLocation },
	},
	{
		id:     nodeVision,
		kind:   fixedKind(graph.KindVisionAccount),
		active: func(t *topology.Topology) bool { return t.Params.UseGPT4V },
		name:   func(t *topology.Topology) string { return t.Names.Vision },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.VisionResourceGroupName, t.Names.ResourceGroup)
		},
		// Multimodal embeddings are region-limited; eastus is the supported fallback.
		location: func(t *topology.Topology) string { return "eastus" },
	},
	{
		id:     nodeSpeech,
		kind:   fixedKind(graph.KindSpeechAccount),
		active: func(t *topology.Topology) bool { return t.Params.UseSpeechOutputAzure },
		name:   func(t *topology.Topology) string { return t.Names.Speech },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.SpeechResourceGroupName, t.Names.ResourceGroup)
		},
		location: func(t *topology.Topology) string { return t.Params.SpeechLocation },
	},
	{
		id:     nodeSearch,
		kind:   fixedKind(graph.KindSearchService),
		active: always,
		name:   func(t *topology.Topology) string { return t.Names.Search },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.SearchServiceResourceGroupName, t.Names.ResourceGroup)
		},
		location: primaryLocation,
		edges: []edge{
			// Diagnostics ship to the monitoring workspace when it exists.
			{target: nodeMonitorWorkspace, when: monitoringEnabled},
		},
	},
	{
		id:     nodeStorage,
		kind:   fixedKind(graph.KindStorageAccount),
		active: always,
		name:   func(t *topology.Topology) string { return t.Names.Storage },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.StorageResourceGroupName, t.Names.ResourceGroup)
		},
		location: primaryLocation,
	},
	{
		id:     nodeUserStorage,
		kind:   fixedKind(graph.KindStorageAccount),
		active: func(t *topology.Topology) bool { return t.Params.UseUserUpload },
		name:   func(t *topology.Topology) string { return t.Names.UserStorage },
		scope: func(t *topology.Topology) graph.Scope {
			return graph.ResolveScope(t.Params.StorageResourceGroupName, t.Names.ResourceGroup)
		},
		location: primaryLocation,
	},
}

// buildGraph walks the catalog, instantiates every active template, attaches
// model deployments, and records dependency edges. The result is verified
// acyclic before being returned.
func buildGraph(t *topology.Topology) (*graph.Graph, error) {
	g := graph.New()

	for _, tpl := range catalog {
		if !tpl.active(t) {
			continue
		}
		n := &graph.Node{
			ID:       tpl.id,
			Kind:     tpl.kind(t),
			Name:     tpl.name(t),
			Scope:    tpl.scope(t),
			Location: tpl.location(t),
		}
		if err := g.Add(n); err != nil {
			return nil, err
		}
	}

	if acct, ok := g.Node(nodeModelAccount); ok {
		for _, p := range modelDeployments(t) {
			if err := acct.AttachDeployment(p); err != nil {
				return nil, err
			}
		}
	}

	for _, tpl := range catalog {
		if !tpl.active(t) {
			continue
		}
		for _, e := range tpl.edges {
			if e.when != nil && !e.when(t) {
				continue
			}
			if !g.Has(e.target) {
				if e.when == nil {
					// Required edge to an inactive node: the catalog is wrong.
					return nil, appErr.Newf(appErr.CodeInternal, "node %q requires absent node %q", tpl.id, e.target)
				}
				continue
			}
			if err := g.AddDependency(tpl.id, e.target); err != nil {
				return nil, err
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

// modelDeployments lists the deployments attached to the model account:
// chat, embedding, and optionally the multimodal deployment.
func modelDeployments(t *topology.Topology) []graph.ModelDeployment {
	out := []graph.ModelDeployment{
		{
			Name:         t.Chat.DeploymentName,
			ModelFamily:  t.Chat.ModelFamily,
			ModelName:    t.Chat.ModelName,
			ModelVersion: t.Chat.ModelVersion,
			Capacity:     t.Chat.Capacity,
		},
		{
			Name:        t.Embedding.DeploymentName,
			ModelFamily: "OpenAI",
			ModelName:   t.Embedding.ModelName,
			Capacity:    t.Embedding.Capacity,
		},
	}
	if t.Vision != nil {
		out = append(out, graph.ModelDeployment{
			Name:         t.Vision.DeploymentName,
			ModelFamily:  t.Vision.ModelFamily,
			ModelName:    t.Vision.ModelName,
			ModelVersion: t.Vision.ModelVersion,
			Capacity:     t.Vision.Capacity,
		})
	}
	return out
}
