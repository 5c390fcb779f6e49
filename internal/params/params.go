package params

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	appErr "github.com/ragops/planner/pkg/errors"
)

// DeploymentTarget selects the mutually exclusive hosting partition.
type DeploymentTarget string

const (
	TargetAppService    DeploymentTarget = "appservice"
	TargetContainerApps DeploymentTarget = "containerapps"
)

// OpenAIHost selects where chat/embedding models are hosted.
type OpenAIHost string

const (
	HostAzure       OpenAIHost = "azure"        // managed cloud-hosted account
	HostOpenAI      OpenAIHost = "openai"       // externally hosted (api key)
	HostAzureCustom OpenAIHost = "azure_custom" // caller-supplied endpoint URL
)

// PrincipalType is how the RBAC system matches the invoking identity.
type PrincipalType string

const (
	PrincipalUser             PrincipalType = "User"
	PrincipalServicePrincipal PrincipalType = "ServicePrincipal"
)

// Set is the validated, typed input configuration for one resolve. It is
// immutable once resolution begins; the resolver never writes back into it.
type Set struct {
	EnvironmentName string `mapstructure:"AZURE_ENV_NAME" json:"environmentName" validate:"required,min=1,max=64"`
	Location        string `mapstructure:"AZURE_LOCATION" json:"location" validate:"required"`
	SubscriptionID  string `mapstructure:"AZURE_SUBSCRIPTION_ID" json:"subscriptionId" validate:"required"`
	TenantID        string `mapstructure:"AZURE_TENANT_ID" json:"tenantId" validate:"required"`
	PrincipalID     string `mapstructure:"AZURE_PRINCIPAL_ID" json:"principalId"`

	// RunningInPipeline switches the caller principal kind from User to
	// ServicePrincipal for role-binding purposes.
	RunningInPipeline bool `mapstructure:"RUNNING_IN_PIPELINE" json:"runningInPipeline"`

	DeploymentTarget DeploymentTarget `mapstructure:"DEPLOYMENT_TARGET" json:"deploymentTarget" validate:"required,oneof=appservice containerapps"`

	OpenAIHost           OpenAIHost `mapstructure:"OPENAI_HOST" json:"openAiHost" validate:"required,oneof=azure openai azure_custom"`
	AzureOpenAICustomURL string     `mapstructure:"AZURE_OPENAI_CUSTOM_URL" json:"azureOpenAiCustomUrl"`
	OpenAIAPIKey         string     `mapstructure:"OPENAI_API_KEY" json:"openAiApiKey"`
	OpenAIOrganization   string     `mapstructure:"OPENAI_ORGANIZATION" json:"openAiOrganization"`

	// DeployAzureOpenAI is false when the caller points at a pre-existing
	// account instead of provisioning a new one.
	DeployAzureOpenAI bool   `mapstructure:"DEPLOY_AZURE_OPENAI" json:"deployAzureOpenAi"`
	OpenAILocation    string `mapstructure:"AZURE_OPENAI_LOCATION" json:"openAiLocation" validate:"required_if=OpenAIHost azure,omitempty,oneof=australiaeast canadaeast eastus eastus2 francecentral japaneast northcentralus swedencentral switzerlandnorth uksouth"`

	// Document extraction is part of the ingestion path and always needs a
	// regulated region.
	DocumentIntelligenceLocation string `mapstructure:"AZURE_DOCUMENTINTELLIGENCE_LOCATION" json:"documentIntelligenceLocation" validate:"required,oneof=eastus westus2 westeurope"`

	// Feature toggles.
	UseGPT4V                   bool `mapstructure:"USE_GPT4V" json:"useGpt4v"`
	UseUserUpload              bool `mapstructure:"USE_USER_UPLOAD" json:"useUserUpload"`
	UsePrivateEndpoint         bool `mapstructure:"USE_PRIVATE_ENDPOINT" json:"usePrivateEndpoint"`
	UseIntegratedVectorization bool `mapstructure:"USE_FEATURE_INT_VECTORIZATION" json:"useIntegratedVectorization"`
	UseAuthentication          bool `mapstructure:"AZURE_USE_AUTHENTICATION" json:"useAuthentication"`
	UseChatHistory             bool `mapstructure:"USE_CHAT_HISTORY_BROWSER" json:"useChatHistory"`
	UseSpeechInputBrowser      bool `mapstructure:"USE_SPEECH_INPUT_BROWSER" json:"useSpeechInputBrowser"`
	UseSpeechOutputAzure       bool `mapstructure:"USE_SPEECH_OUTPUT_AZURE" json:"useSpeechOutputAzure"`
	UseApplicationInsights     bool `mapstructure:"AZURE_USE_APPLICATION_INSIGHTS" json:"useApplicationInsights"`

	PublicNetworkAccess string `mapstructure:"AZURE_PUBLIC_NETWORK_ACCESS" json:"publicNetworkAccess" validate:"required,oneof=Enabled Disabled"`

	AuthTenantID string `mapstructure:"AZURE_AUTH_TENANT_ID" json:"authTenantId"`

	// Model knobs. Zero numeric values mean "unset, derive the default".
	UseAdvancedChatModel        bool   `mapstructure:"USE_ADVANCED_CHAT_MODEL" json:"useAdvancedChatModel"`
	ChatDeploymentCapacity      int    `mapstructure:"AZURE_OPENAI_CHATGPT_DEPLOYMENT_CAPACITY" json:"chatDeploymentCapacity" validate:"gte=0"`
	EmbeddingModelName          string `mapstructure:"AZURE_OPENAI_EMB_MODEL_NAME" json:"embeddingModelName"`
	EmbeddingDimensions         int    `mapstructure:"AZURE_OPENAI_EMB_DIMENSIONS" json:"embeddingDimensions" validate:"gte=0"`
	EmbeddingDeploymentCapacity int    `mapstructure:"AZURE_OPENAI_EMB_DEPLOYMENT_CAPACITY" json:"embeddingDeploymentCapacity" validate:"gte=0"`

	SearchIndexName     string `mapstructure:"AZURE_SEARCH_INDEX" json:"searchIndexName"`
	SearchQueryLanguage string `mapstructure:"AZURE_SEARCH_QUERY_LANGUAGE" json:"searchQueryLanguage"`
	SearchQuerySpeller  string `mapstructure:"AZURE_SEARCH_QUERY_SPELLER" json:"searchQuerySpeller"`

	SpeechLocation string `mapstructure:"AZURE_SPEECH_LOCATION" json:"speechLocation"`
	SpeechVoice    string `mapstructure:"AZURE_SPEECH_VOICE" json:"speechVoice"`

	StorageContainerName     string `mapstructure:"AZURE_STORAGE_CONTAINER" json:"storageContainerName"`
	UserStorageContainerName string `mapstructure:"AZURE_USERSTORAGE_CONTAINER" json:"userStorageContainerName"`

	// Naming overrides. Empty string means "derive the default name".
	ResourceGroupName               string `mapstructure:"AZURE_RESOURCE_GROUP" json:"resourceGroupName" validate:"omitempty,max=90"`
	SearchServiceName               string `mapstructure:"AZURE_SEARCH_SERVICE" json:"searchServiceName" validate:"omitempty,max=60"`
	StorageAccountName              string `mapstructure:"AZURE_STORAGE_ACCOUNT" json:"storageAccountName" validate:"omitempty,min=3,max=24,alphanum,lowercase"`
	UserStorageAccountName          string `mapstructure:"AZURE_USERSTORAGE_ACCOUNT" json:"userStorageAccountName" validate:"omitempty,min=3,max=24,alphanum,lowercase"`
	OpenAIServiceName               string `mapstructure:"AZURE_OPENAI_SERVICE" json:"openAiServiceName" validate:"omitempty,max=64"`
	VisionServiceName               string `mapstructure:"AZURE_COMPUTER_VISION_SERVICE" json:"visionServiceName" validate:"omitempty,max=64"`
	DocumentIntelligenceServiceName string `mapstructure:"AZURE_DOCUMENTINTELLIGENCE_SERVICE" json:"documentIntelligenceServiceName" validate:"omitempty,max=64"`
	SpeechServiceName               string `mapstructure:"AZURE_SPEECH_SERVICE" json:"speechServiceName" validate:"omitempty,max=64"`
	AppServicePlanName              string `mapstructure:"AZURE_APP_SERVICE_PLAN" json:"appServicePlanName" validate:"omitempty,max=60"`
	BackendServiceName              string `mapstructure:"AZURE_APP_SERVICE" json:"backendServiceName" validate:"omitempty,max=60"`
	ContainerRegistryName           string `mapstructure:"AZURE_CONTAINER_REGISTRY" json:"containerRegistryName" validate:"omitempty,min=5,max=50,alphanum"`
	ContainerAppsEnvironmentName    string `mapstructure:"AZURE_CONTAINER_APPS_ENVIRONMENT" json:"containerAppsEnvironmentName" validate:"omitempty,max=60"`
	BackendIdentityName             string `mapstructure:"AZURE_BACKEND_IDENTITY" json:"backendIdentityName" validate:"omitempty,max=128"`
	LogAnalyticsName                string `mapstructure:"AZURE_LOG_ANALYTICS" json:"logAnalyticsName" validate:"omitempty,max=63"`
	ApplicationInsightsName         string `mapstructure:"AZURE_APPLICATION_INSIGHTS" json:"applicationInsightsName" validate:"omitempty,max=255"`
	DashboardName                   string `mapstructure:"AZURE_APPLICATION_INSIGHTS_DASHBOARD" json:"dashboardName" validate:"omitempty,max=160"`

	// External resource-group overrides. Empty string falls back to the
	// primary group.
	OpenAIResourceGroupName               string `mapstructure:"AZURE_OPENAI_RESOURCE_GROUP" json:"openAiResourceGroupName"`
	SearchServiceResourceGroupName        string `mapstructure:"AZURE_SEARCH_SERVICE_RESOURCE_GROUP" json:"searchServiceResourceGroupName"`
	StorageResourceGroupName              string `mapstructure:"AZURE_STORAGE_RESOURCE_GROUP" json:"storageResourceGroupName"`
	VisionResourceGroupName               string `mapstructure:"AZURE_COMPUTER_VISION_RESOURCE_GROUP" json:"visionResourceGroupName"`
	DocumentIntelligenceResourceGroupName string `mapstructure:"AZURE_DOCUMENTINTELLIGENCE_RESOURCE_GROUP" json:"documentIntelligenceResourceGroupName"`
	SpeechResourceGroupName               string `mapstructure:"AZURE_SPEECH_RESOURCE_GROUP" json:"speechResourceGroupName"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Defaults returns a Set with the built-in defaults applied. Callers overlay
// their own values on top before validating.
func Defaults() Set {
	return Set{
		DeploymentTarget:         TargetAppService,
		OpenAIHost:               HostAzure,
		DeployAzureOpenAI:        true,
		UseApplicationInsights:   true,
		PublicNetworkAccess:      "Enabled",
		SearchIndexName:          "gptkbindex",
		SearchQueryLanguage:      "en-us",
		SearchQuerySpeller:       "lexicon",
		SpeechLocation:           "eastus",
		SpeechVoice:              "en-US-AndrewMultilingualNeural",
		StorageContainerName:     "content",
		UserStorageContainerName: "user-content",
	}
}

// PrincipalType resolves the caller's principal kind from the pipeline flag.
func (s *Set) PrincipalType() PrincipalType {
	if s.RunningInPipeline {
		return PrincipalServicePrincipal
	}
	return PrincipalUser
}

// Validate checks enum membership, string bounds, and required-field presence.
// The first violation is reported as a validation error naming the field.
func (s *Set) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return appErr.Invalid(fe.Field(), fe.Tag())
		}
		return appErr.Wrap(err, appErr.CodeValidation, "parameter validation failed")
	}
	return nil
}

// envKeys lists every environment variable one Set can be loaded from.
func envKeys() []string {
	return []string{
		"AZURE_ENV_NAME", "AZURE_LOCATION", "AZURE_SUBSCRIPTION_ID", "AZURE_TENANT_ID",
		"AZURE_PRINCIPAL_ID", "RUNNING_IN_PIPELINE", "DEPLOYMENT_TARGET",
		"OPENAI_HOST", "AZURE_OPENAI_CUSTOM_URL", "OPENAI_API_KEY", "OPENAI_ORGANIZATION",
		"DEPLOY_AZURE_OPENAI", "AZURE_OPENAI_LOCATION", "AZURE_DOCUMENTINTELLIGENCE_LOCATION",
		"USE_GPT4V", "USE_USER_UPLOAD", "USE_PRIVATE_ENDPOINT", "USE_FEATURE_INT_VECTORIZATION",
		"AZURE_USE_AUTHENTICATION", "USE_CHAT_HISTORY_BROWSER", "USE_SPEECH_INPUT_BROWSER",
		"USE_SPEECH_OUTPUT_AZURE", "AZURE_USE_APPLICATION_INSIGHTS", "AZURE_PUBLIC_NETWORK_ACCESS",
		"AZURE_AUTH_TENANT_ID", "USE_ADVANCED_CHAT_MODEL",
		"AZURE_OPENAI_CHATGPT_DEPLOYMENT_CAPACITY", "AZURE_OPENAI_EMB_MODEL_NAME",
		"AZURE_OPENAI_EMB_DIMENSIONS", "AZURE_OPENAI_EMB_DEPLOYMENT_CAPACITY",
		"AZURE_SEARCH_INDEX", "AZURE_SEARCH_QUERY_LANGUAGE", "AZURE_SEARCH_QUERY_SPELLER",
		"AZURE_SPEECH_LOCATION", "AZURE_SPEECH_VOICE",
		"AZURE_STORAGE_CONTAINER", "AZURE_USERSTORAGE_CONTAINER",
		"AZURE_RESOURCE_GROUP", "AZURE_SEARCH_SERVICE", "AZURE_STORAGE_ACCOUNT",
		"AZURE_USERSTORAGE_ACCOUNT", "AZURE_OPENAI_SERVICE", "AZURE_COMPUTER_VISION_SERVICE",
		"AZURE_DOCUMENTINTELLIGENCE_SERVICE", "AZURE_SPEECH_SERVICE", "AZURE_APP_SERVICE_PLAN",
		"AZURE_APP_SERVICE", "AZURE_CONTAINER_REGISTRY", "AZURE_CONTAINER_APPS_ENVIRONMENT",
		"AZURE_BACKEND_IDENTITY", "AZURE_LOG_ANALYTICS", "AZURE_APPLICATION_INSIGHTS",
		"AZURE_APPLICATION_INSIGHTS_DASHBOARD",
		"AZURE_OPENAI_RESOURCE_GROUP", "AZURE_SEARCH_SERVICE_RESOURCE_GROUP",
		"AZURE_STORAGE_RESOURCE_GROUP", "AZURE_COMPUTER_VISION_RESOURCE_GROUP",
		"AZURE_DOCUMENTINTELLIGENCE_RESOURCE_GROUP", "AZURE_SPEECH_RESOURCE_GROUP",
	}
}

// FromEnv loads a Set from process environment variables, with .env support.
// Defaults apply for any unset key. The result is validated.
func FromEnv() (*Set, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys() {
		_ = v.BindEnv(key)
	}

	d := Defaults()
	v.SetDefault("DEPLOYMENT_TARGET", string(d.DeploymentTarget))
	v.SetDefault("OPENAI_HOST", string(d.OpenAIHost))
	v.SetDefault("DEPLOY_AZURE_OPENAI", d.DeployAzureOpenAI)
	v.SetDefault("AZURE_USE_APPLICATION_INSIGHTS", d.UseApplicationInsights)
	v.SetDefault("AZURE_PUBLIC_NETWORK_ACCESS", d.PublicNetworkAccess)
	v.SetDefault("AZURE_SEARCH_INDEX", d.SearchIndexName)
	v.SetDefault("AZURE_SEARCH_QUERY_LANGUAGE", d.SearchQueryLanguage)
	v.SetDefault("AZURE_SEARCH_QUERY_SPELLER", d.SearchQuerySpeller)
	v.SetDefault("AZURE_SPEECH_LOCATION", d.SpeechLocation)
	v.SetDefault("AZURE_SPEECH_VOICE", d.SpeechVoice)
	v.SetDefault("AZURE_STORAGE_CONTAINER", d.StorageContainerName)
	v.SetDefault("AZURE_USERSTORAGE_CONTAINER", d.UserStorageContainerName)

	var s Set
	if err := v.Unmarshal(&s); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeValidation, "parameter decode failed")
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Set) normalize() {
	s.DeploymentTarget = DeploymentTarget(strings.ToLower(string(s.DeploymentTarget)))
	s.OpenAIHost = OpenAIHost(strings.ToLower(string(s.OpenAIHost)))
	if s.AuthTenantID == "" {
		s.AuthTenantID = s.TenantID
	}
}

// Normalize applies the same canonicalization FromEnv performs, for callers
// that build a Set directly (the HTTP API decodes JSON bodies into one).
func (s *Set) Normalize() { s.normalize() }
