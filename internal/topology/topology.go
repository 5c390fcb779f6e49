// Package topology derives secondary configuration from a validated
// parameter set: the naming token, resolved resource names, effective model
// deployments, and the mutually exclusive host-mode flags. It is a pure
// function of its input and performs no I/O.
package topology

import (
	"github.com/ragops/planner/internal/params"
	appErr "github.com/ragops/planner/pkg/errors"
)

// Chat model profiles. A single boolean toggles between them; everything else
// about the chat deployment is fixed.
var (
	chatProfileLowerCost = ModelProfile{
		DeploymentName: "chat",
		ModelFamily:    "OpenAI",
		ModelName:      "gpt-4o-mini",
		ModelVersion:   "2024-07-18",
		Capacity:       30,
	}
	chatProfileAdvanced = ModelProfile{
		DeploymentName: "chat",
		ModelFamily:    "OpenAI",
		ModelName:      "gpt-4o",
		ModelVersion:   "2024-08-06",
		Capacity:       30,
	}
	visionProfile = ModelProfile{
		DeploymentName: "gpt4v",
		ModelFamily:    "OpenAI",
		ModelName:      "gpt-4o",
		ModelVersion:   "2024-08-06",
		Capacity:       10,
	}
)

const (
	defaultEmbeddingModel      = "text-embedding-ada-002"
	defaultEmbeddingDimensions = 1536
	defaultEmbeddingCapacity   = 30
)

// ModelProfile describes one hosted model deployment.
type ModelProfile struct {
	DeploymentName string `json:"deploymentName"`
	ModelFamily    string `json:"modelFamily"`
	ModelName      string `json:"modelName"`
	ModelVersion   string `json:"modelVersion"`
	Capacity       int    `json:"capacity"`
}

// EmbeddingProfile is the effective embedding deployment configuration.
type EmbeddingProfile struct {
	DeploymentName string `json:"deploymentName"`
	ModelName      string `json:"modelName"`
	Dimensions     int    `json:"dimensions"`
	Capacity       int    `json:"capacity"`
}

// Topology is the derived secondary configuration consumed by the graph
// builder and the planners downstream of it.
type Topology struct {
	Params *params.Set `json:"-"`

	Token string `json:"token"`
	Names Names  `json:"names"`

	Chat      ModelProfile     `json:"chat"`
	Embedding EmbeddingProfile `json:"embedding"`
	Vision    *ModelProfile    `json:"vision,omitempty"`

	// IsAzureHosted records whether the managed-cloud variant applies at all,
	// independent of whether an account is actually deployed (the caller may
	// point at a pre-existing instance).
	IsAzureHosted bool `json:"isAzureHosted"`
	// DeployModelAccount is true only when a managed account should be
	// provisioned by this plan.
	DeployModelAccount bool `json:"deployModelAccount"`
}

// Resolve derives the topology for a validated parameter set. It fails with a
// conflict error when the selected host variant requires a field the caller
// left empty; it never silently substitutes a default for those.
func Resolve(p *params.Set) (*Topology, error) {
	switch p.OpenAIHost {
	case params.HostAzureCustom:
		if p.AzureOpenAICustomURL == "" {
			return nil, appErr.Conflict("custom-endpoint host mode requires a custom endpoint URL").WithMeta("field", "AzureOpenAICustomURL")
		}
	case params.HostOpenAI:
		if p.OpenAIAPIKey == "" {
			return nil, appErr.Conflict("externally-hosted mode requires an API key").WithMeta("field", "OpenAIAPIKey")
		}
	}

	// User upload needs a storage scope this plan can write a second account
	// into. An external storage group is only usable if the caller also names
	// the user storage account living there.
	if p.UseUserUpload && p.StorageResourceGroupName != "" && p.UserStorageAccountName == "" {
		return nil, appErr.Conflict("user upload with an external storage group requires a user storage account name").WithMeta("field", "UserStorageAccountName")
	}

	token := Token(p.SubscriptionID, p.EnvironmentName, p.Location)

	backendPrefix := prefixBackendApp
	if p.DeploymentTarget == params.TargetContainerApps {
		backendPrefix = prefixContainerApp
	}

	t := &Topology{
		Params: p,
		Token:  token,
		Names: Names{
			ResourceGroup:  name(p.ResourceGroupName, prefixResourceGroup, token),
			LogAnalytics:   name(p.LogAnalyticsName, prefixLogAnalytics, token),
			AppInsights:    name(p.ApplicationInsightsName, prefixAppInsights, token),
			Dashboard:      name(p.DashboardName, prefixDashboard, token),
			HostingPlan:    name(p.AppServicePlanName, prefixHostingPlan, token),
			BackendApp:     name(p.BackendServiceName, backendPrefix, token),
			Registry:       name(p.ContainerRegistryName, prefixRegistry, token),
			ContainerEnv:   name(p.ContainerAppsEnvironmentName, prefixContainerEnv, token),
			Identity:       name(p.BackendIdentityName, prefixIdentity, token),
			OpenAI:         name(p.OpenAIServiceName, prefixOpenAI, token),
			DocExtraction:  name(p.DocumentIntelligenceServiceName, prefixDocExtraction, token),
			Vision:         name(p.VisionServiceName, prefixVision, token),
			Speech:         name(p.SpeechServiceName, prefixSpeech, token),
			Search:         name(p.SearchServiceName, prefixSearch, token),
			Storage:        name(p.StorageAccountName, prefixStorage, token),
			UserStorage:    name(p.UserStorageAccountName, prefixUserStorage, token),
			VirtualNetwork: name("", prefixVirtualNetwork, token),
		},
		IsAzureHosted:      p.OpenAIHost == params.HostAzure || p.OpenAIHost == params.HostAzureCustom,
		DeployModelAccount: p.OpenAIHost == params.HostAzure && p.DeployAzureOpenAI,
	}

	t.Chat = chatProfileLowerCost
	if p.UseAdvancedChatModel {
		t.Chat = chatProfileAdvanced
	}
	if p.ChatDeploymentCapacity > 0 {
		t.Chat.Capacity = p.ChatDeploymentCapacity
	}

	// Numeric zero means unset, never a valid dimension or capacity.
	t.Embedding = EmbeddingProfile{
		DeploymentName: "embedding",
		ModelName:      p.EmbeddingModelName,
		Dimensions:     p.EmbeddingDimensions,
		Capacity:       p.EmbeddingDeploymentCapacity,
	}
	if t.Embedding.ModelName == "" {
		t.Embedding.ModelName = defaultEmbeddingModel
	}
	if t.Embedding.Dimensions == 0 {
		t.Embedding.Dimensions = defaultEmbeddingDimensions
	}
	if t.Embedding.Capacity == 0 {
		t.Embedding.Capacity = defaultEmbeddingCapacity
	}

	if p.UseGPT4V {
		v := visionProfile
		t.Vision = &v
	}

	return t, nil
}
