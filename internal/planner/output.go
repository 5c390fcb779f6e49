package planner

import (
	"fmt"
	"strconv"

	"github.com/ragops/planner/internal/graph"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/topology"
)

const openAIAPIVersion = "2024-06-01"

// OperatorRecord is the human/automation-facing projection of the plan:
// resource-group names per domain and the public endpoints worth printing
// after an apply.
type OperatorRecord struct {
	ResourceGroup                     string `json:"resourceGroup"`
	OpenAIResourceGroup               string `json:"openAiResourceGroup"`
	SearchServiceResourceGroup        string `json:"searchServiceResourceGroup"`
	StorageResourceGroup              string `json:"storageResourceGroup"`
	VisionResourceGroup               string `json:"visionResourceGroup"`
	DocumentIntelligenceResourceGroup string `json:"documentIntelligenceResourceGroup"`
	SpeechResourceGroup               string `json:"speechResourceGroup"`

	// SearchServicePrincipalRef names the node whose managed identity receives
	// downstream grants once the apply engine knows its principal ID.
	SearchServicePrincipalRef string `json:"searchServicePrincipalRef"`

	BackendURI          string `json:"backendUri"`
	SearchEndpoint      string `json:"searchEndpoint"`
	ModelEndpoint       string `json:"modelEndpoint"`
	StorageBlobEndpoint string `json:"storageBlobEndpoint"`
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

// nodeName returns the resolved name of an active node, or the empty sentinel
// when the node is absent from the graph.
func nodeName(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Name
	}
	return ""
}

func scopeGroup(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Scope.ResourceGroup
	}
	return ""
}

// assembleEnvironment projects the plan into the flat key/value environment
// the runtime application reads at startup. Every key is always present;
// conditionally-inactive components emit empty-string sentinels so consumers
// can rely on key presence.
func assembleEnvironment(t *topology.Topology, g *graph.Graph) map[string]string {
	p := t.Params

	openAIService := ""
	openAIEndpoint := ""
	if t.IsAzureHosted && p.OpenAIHost == params.HostAzure {
		// Name resolves even when deployment is skipped for a pre-existing
		// account; the runtime addresses it either way.
		openAIService = t.Names.OpenAI
		openAIEndpoint = fmt.Sprintf("https://%s.openai.azure.com", openAIService)
	}

	visionEndpoint := ""
	if v := nodeName(g, nodeVision); v != "" {
		visionEndpoint = fmt.Sprintf("https://%s.cognitiveservices.azure.com", v)
	}

	gpt4vDeployment := ""
	gpt4vModel := ""
	if t.Vision != nil {
		gpt4vDeployment = t.Vision.DeploymentName
		gpt4vModel = t.Vision.ModelName
	}

	issuer := ""
	if p.UseAuthentication {
		issuer = fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", p.AuthTenantID)
	}

	speechLocation := ""
	if g.Has(nodeSpeech) {
		speechLocation = p.SpeechLocation
	}

	return map[string]string{
		"AZURE_TENANT_ID":      p.TenantID,
		"AZURE_AUTH_TENANT_ID": p.AuthTenantID,
		"AZURE_AUTH_ISSUER_URI": issuer,

		"AZURE_SEARCH_SERVICE":        t.Names.Search,
		"AZURE_SEARCH_INDEX":          p.SearchIndexName,
		"AZURE_SEARCH_QUERY_LANGUAGE": p.SearchQueryLanguage,
		"AZURE_SEARCH_QUERY_SPELLER":  p.SearchQuerySpeller,

		"OPENAI_HOST":                     string(p.OpenAIHost),
		"OPENAI_ORGANIZATION":             p.OpenAIOrganization,
		"AZURE_OPENAI_SERVICE":            openAIService,
		"AZURE_OPENAI_ENDPOINT":           openAIEndpoint,
		"AZURE_OPENAI_CUSTOM_URL":         p.AzureOpenAICustomURL,
		"AZURE_OPENAI_API_VERSION":        openAIAPIVersion,
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT": t.Chat.DeploymentName,
		"AZURE_OPENAI_CHATGPT_MODEL":      t.Chat.ModelName,
		"AZURE_OPENAI_EMB_DEPLOYMENT":     t.Embedding.DeploymentName,
		"AZURE_OPENAI_EMB_MODEL_NAME":     t.Embedding.ModelName,
		"AZURE_OPENAI_EMB_DIMENSIONS":     strconv.Itoa(t.Embedding.Dimensions),
		"AZURE_OPENAI_GPT4V_DEPLOYMENT":   gpt4vDeployment,
		"AZURE_OPENAI_GPT4V_MODEL":        gpt4vModel,

		"AZURE_STORAGE_ACCOUNT":       t.Names.Storage,
		"AZURE_STORAGE_CONTAINER":     p.StorageContainerName,
		"AZURE_USERSTORAGE_ACCOUNT":   nodeName(g, nodeUserStorage),
		"AZURE_USERSTORAGE_CONTAINER": userStorageContainer(p, g),

		"AZURE_DOCUMENTINTELLIGENCE_SERVICE": t.Names.DocExtraction,
		"AZURE_VISION_ENDPOINT":              visionEndpoint,

		// The speech resource ID is only known after apply; the key still
		// ships so consumers can rely on presence.
		"AZURE_SPEECH_SERVICE_ID":       "",
		"AZURE_SPEECH_SERVICE_LOCATION": speechLocation,
		"AZURE_SPEECH_VOICE":            p.SpeechVoice,

		"AZURE_APPLICATION_INSIGHTS": nodeName(g, nodeMonitorInsights),

		"AZURE_USE_AUTHENTICATION": boolString(p.UseAuthentication),
		"USE_GPT4V":                boolString(p.UseGPT4V),
		"USE_USER_UPLOAD":          boolString(p.UseUserUpload),
		"USE_CHAT_HISTORY_BROWSER": boolString(p.UseChatHistory),
		"USE_SPEECH_INPUT_BROWSER": boolString(p.UseSpeechInputBrowser),
		"USE_SPEECH_OUTPUT_AZURE":  boolString(p.UseSpeechOutputAzure),
		"USE_FEATURE_INT_VECTORIZATION": boolString(p.UseIntegratedVectorization),
	}
}

func userStorageContainer(p *params.Set, g *graph.Graph) string {
	if g.Has(nodeUserStorage) {
		return p.UserStorageContainerName
	}
	return ""
}

// assembleOperatorRecord builds the secondary output record.
func assembleOperatorRecord(t *topology.Topology, g *graph.Graph) OperatorRecord {
	backendURI := ""
	if n, ok := g.Node(nodeBackendApp); ok && n.Kind == graph.KindHostingApp {
		// Container app FQDNs are assigned at apply time; only the app-service
		// hostname is derivable here.
		backendURI = fmt.Sprintf("https://%s.azurewebsites.net", n.Name)
	}

	modelEndpoint := ""
	if g.Has(nodeModelAccount) {
		modelEndpoint = fmt.Sprintf("https://%s.openai.azure.com", nodeName(g, nodeModelAccount))
	}

	return OperatorRecord{
		ResourceGroup:                     t.Names.ResourceGroup,
		OpenAIResourceGroup:               scopeGroup(g, nodeModelAccount),
		SearchServiceResourceGroup:        scopeGroup(g, nodeSearch),
		StorageResourceGroup:              scopeGroup(g, nodeStorage),
		VisionResourceGroup:               scopeGroup(g, nodeVision),
		DocumentIntelligenceResourceGroup: scopeGroup(g, nodeDocExtraction),
		SpeechResourceGroup:               scopeGroup(g, nodeSpeech),
		SearchServicePrincipalRef:         nodeSearch,
		BackendURI:                        backendURI,
		SearchEndpoint:                    fmt.Sprintf("https://%s.search.windows.net", t.Names.Search),
		ModelEndpoint:                     modelEndpoint,
		StorageBlobEndpoint:               fmt.Sprintf("https://%s.blob.core.windows.net", t.Names.Storage),
	}
}
