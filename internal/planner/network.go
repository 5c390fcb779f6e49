package planner

import (
	"github.com/ragops/planner/internal/graph"
	"github.com/ragops/planner/internal/topology"
)

// EndpointGroup is one private-endpoint connectivity group: every target in
// the group registers under the same private DNS zone.
type EndpointGroup struct {
	GroupID     string   `json:"groupId"`
	DNSZone     string   `json:"dnsZone"`
	TargetNodes []string `json:"targetNodes"`
}

// endpointGroupSpec fixes the group order and the DNS zone per connectivity
// type. Targets are filtered to active nodes at plan time.
type endpointGroupSpec struct {
	groupID string
	dnsZone string
	targets []string
}

var endpointGroups = []endpointGroupSpec{
	{groupID: "blob", dnsZone: "privatelink.blob.core.windows.net", targets: []string{nodeStorage, nodeUserStorage}},
	{groupID: "search", dnsZone: "privatelink.search.windows.net", targets: []string{nodeSearch}},
	{groupID: "sites", dnsZone: "privatelink.azurewebsites.net", targets: []string{nodeBackendApp}},
	{groupID: "cognitiveservices", dnsZone: "privatelink.cognitiveservices.azure.com", targets: []string{nodeDocExtraction, nodeVision, nodeSpeech}},
	{groupID: "openai", dnsZone: "privatelink.openai.azure.com", targets: []string{nodeModelAccount}},
}

// planPrivateEndpoints groups resources needing private exposure by
// connectivity type. Empty when private networking is disabled or the active
// deployment target does not support it.
func planPrivateEndpoints(t *topology.Topology, g *graph.Graph) []EndpointGroup {
	if !privateNetworking(t) {
		return nil
	}

	var out []EndpointGroup
	for _, spec := range endpointGroups {
		var targets []string
		for _, id := range spec.targets {
			if g.Has(id) {
				targets = append(targets, id)
			}
		}
		if len(targets) == 0 {
			continue
		}
		out = append(out, EndpointGroup{
			GroupID:     spec.groupID,
			DNSZone:     spec.dnsZone,
			TargetNodes: targets,
		})
	}
	return out
}
