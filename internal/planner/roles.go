package planner

import (
	"github.com/ragops/planner/internal/graph"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/topology"
)

// Built-in role definition IDs for the roles the plan grants.
const (
	RoleOpenAIUser             = "5e0bd9bd-7b93-4f28-af87-19fc36ad61bd"
	RoleCognitiveServicesUser  = "a97b65f3-24c7-4388-baec-2e87135dc908"
	RoleSpeechUser             = "f2dc8367-1007-4938-bd23-fe263f013447"
	RoleStorageBlobReader      = "2a2b9908-6ea1-4ae2-8e65-a410df84e7d1"
	RoleStorageBlobContributor = "ba92f5b4-2d11-453d-a403-e96b0029c9fe"
	RoleStorageBlobOwner       = "b7e6dc6d-f1e8-4753-8033-0f276bb0955b"
	RoleSearchIndexReader      = "1407120a-92aa-4202-b7e9-c0e197c71c8f"
	RoleSearchIndexContributor = "8ebe5a00-799e-43f5-93ac-243d3dce84a7"
	RoleSearchServiceContrib   = "7ca78c08-252a-4471-8644-bb5ff32d4ba0"
	RoleAcrPull                = "7f951dda-4ed3-4680-a7ca-43fe172d538d"
)

// RoleBinding grants one role to one principal over one resource scope.
// Exactly one of PrincipalID or PrincipalRef is set: the operator's identity
// is known at resolve time, the backend runtime identity only exists after
// apply and is referenced by node ID instead.
type RoleBinding struct {
	PrincipalID   string               `json:"principalId,omitempty"`
	PrincipalRef  string               `json:"principalRef,omitempty"`
	PrincipalKind params.PrincipalType `json:"principalKind"`
	RoleID        string               `json:"roleId"`
	RoleName      string               `json:"roleName"`
	TargetNode    string               `json:"targetNode"`
	Scope         graph.Scope          `json:"scope"`
}

type principalSelector int

const (
	principalOperator principalSelector = iota
	principalBackend
)

// roleRow is one row of the declarative grant table: target resource, role,
// who gets it, and an optional feature gate on top of target activity.
type roleRow struct {
	target    string
	roleID    string
	roleName  string
	principal principalSelector
	when      predicate
}

// roleTable is iterated in order on every resolve. A row whose target node is
// inactive is skipped entirely; it never produces a binding with a null
// target.
var roleTable = []roleRow{
	// Operator access for local development and ingestion runs.
	{target: nodeModelAccount, roleID: RoleOpenAIUser, roleName: "Cognitive Services OpenAI User", principal: principalOperator},
	{target: nodeDocExtraction, roleID: RoleCognitiveServicesUser, roleName: "Cognitive Services User", principal: principalOperator},
	{target: nodeVision, roleID: RoleCognitiveServicesUser, roleName: "Cognitive Services User", principal: principalOperator},
	{target: nodeSpeech, roleID: RoleSpeechUser, roleName: "Cognitive Services Speech User", principal: principalOperator},
	{target: nodeStorage, roleID: RoleStorageBlobReader, roleName: "Storage Blob Data Reader", principal: principalOperator},
	{target: nodeStorage, roleID: RoleStorageBlobContributor, roleName: "Storage Blob Data Contributor", principal: principalOperator,
		when: func(t *topology.Topology) bool { return t.Params.UseIntegratedVectorization }},
	{target: nodeSearch, roleID: RoleSearchIndexReader, roleName: "Search Index Data Reader", principal: principalOperator},
	{target: nodeSearch, roleID: RoleSearchIndexContributor, roleName: "Search Index Data Contributor", principal: principalOperator},
	{target: nodeSearch, roleID: RoleSearchServiceContrib, roleName: "Search Service Contributor", principal: principalOperator},

	// Backend runtime identity.
	{target: nodeModelAccount, roleID: RoleOpenAIUser, roleName: "Cognitive Services OpenAI User", principal: principalBackend},
	{target: nodeStorage, roleID: RoleStorageBlobReader, roleName: "Storage Blob Data Reader", principal: principalBackend},
	{target: nodeSearch, roleID: RoleSearchIndexReader, roleName: "Search Index Data Reader", principal: principalBackend},
	{target: nodeRegistry, roleID: RoleAcrPull, roleName: "AcrPull", principal: principalBackend},
	{target: nodeVision, roleID: RoleCognitiveServicesUser, roleName: "Cognitive Services User", principal: principalBackend},
	{target: nodeSpeech, roleID: RoleSpeechUser, roleName: "Cognitive Services Speech User", principal: principalBackend},

	// User upload: the backend extracts documents and writes blobs itself.
	{target: nodeDocExtraction, roleID: RoleCognitiveServicesUser, roleName: "Cognitive Services User", principal: principalBackend,
		when: func(t *topology.Topology) bool { return t.Params.UseUserUpload }},
	{target: nodeStorage, roleID: RoleStorageBlobOwner, roleName: "Storage Blob Data Owner", principal: principalBackend,
		when: func(t *topology.Topology) bool { return t.Params.UseUserUpload }},
	{target: nodeUserStorage, roleID: RoleStorageBlobOwner, roleName: "Storage Blob Data Owner", principal: principalBackend,
		when: func(t *topology.Topology) bool { return t.Params.UseUserUpload }},
	{target: nodeSearch, roleID: RoleSearchIndexContributor, roleName: "Search Index Data Contributor", principal: principalBackend,
		when: func(t *topology.Topology) bool { return t.Params.UseUserUpload || t.Params.UseIntegratedVectorization }},
}

// backendPrincipalRef resolves "the backend runtime identity" through the
// active deployment target: the hosting app's system-assigned identity, or
// the container stack's user-assigned identity.
func backendPrincipalRef(t *topology.Topology) string {
	if containerHosted(t) {
		return nodeBackendIdentity
	}
	return nodeBackendApp
}

// planRoleBindings walks the role table and emits a binding per active row.
// Duplicate grants of the same role to the same principal on the same target
// resource are suppressed; the same role on two resources sharing a group is
// two distinct grants.
func planRoleBindings(t *topology.Topology, g *graph.Graph) []RoleBinding {
	type key struct {
		principal string
		roleID    string
		target    string
	}
	seen := make(map[key]bool)

	var out []RoleBinding
	for _, row := range roleTable {
		if row.when != nil && !row.when(t) {
			continue
		}
		target, ok := g.Node(row.target)
		if !ok {
			continue
		}

		b := RoleBinding{
			RoleID:     row.roleID,
			RoleName:   row.roleName,
			TargetNode: row.target,
			Scope:      target.Scope,
		}
		switch row.principal {
		case principalOperator:
			if t.Params.PrincipalID == "" {
				continue
			}
			b.PrincipalID = t.Params.PrincipalID
			b.PrincipalKind = t.Params.PrincipalType()
		case principalBackend:
			ref := backendPrincipalRef(t)
			if !g.Has(ref) {
				continue
			}
			b.PrincipalRef = ref
			b.PrincipalKind = params.PrincipalServicePrincipal
		}

		k := key{principal: b.PrincipalID + b.PrincipalRef, roleID: b.RoleID, target: b.TargetNode}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	return out
}
