package topology

// namePrefix is the fixed per-resource-type prefix table for derived default
// names. Prefixes without a trailing dash belong to resource types whose
// names must be bare alphanumerics (storage accounts, container registries).
type namePrefix string

const (
	prefixResourceGroup  namePrefix = "rg-"
	prefixLogAnalytics   namePrefix = "log-"
	prefixAppInsights    namePrefix = "appi-"
	prefixDashboard      namePrefix = "dash-"
	prefixHostingPlan    namePrefix = "plan-"
	prefixBackendApp     namePrefix = "app-backend-"
	prefixRegistry       namePrefix = "cr"
	prefixContainerEnv   namePrefix = "cae-"
	prefixContainerApp   namePrefix = "ca-backend-"
	prefixIdentity       namePrefix = "id-backend-"
	prefixOpenAI         namePrefix = "cog-"
	prefixDocExtraction  namePrefix = "cog-di-"
	prefixVision         namePrefix = "cog-cv-"
	prefixSpeech         namePrefix = "cog-sp-"
	prefixSearch         namePrefix = "gptkb-"
	prefixStorage        namePrefix = "st"
	prefixUserStorage    namePrefix = "userst"
	prefixVirtualNetwork namePrefix = "vnet-"
)

// name applies the override-or-derive rule: a non-empty override is used
// verbatim, otherwise the default is prefix+token. Every nameable resource
// goes through this one function.
func name(override string, prefix namePrefix, token string) string {
	if override != "" {
		return override
	}
	return string(prefix) + token
}

// Names holds the resolved name of every nameable resource, whether or not
// that resource ends up active in the graph.
type Names struct {
	ResourceGroup  string `json:"resourceGroup"`
	LogAnalytics   string `json:"logAnalytics"`
	AppInsights    string `json:"appInsights"`
	Dashboard      string `json:"dashboard"`
	HostingPlan    string `json:"hostingPlan"`
	BackendApp     string `json:"backendApp"`
	Registry       string `json:"registry"`
	ContainerEnv   string `json:"containerEnv"`
	Identity       string `json:"identity"`
	OpenAI         string `json:"openAi"`
	DocExtraction  string `json:"docExtraction"`
	Vision         string `json:"vision"`
	Speech         string `json:"speech"`
	Search         string `json:"search"`
	Storage        string `json:"storage"`
	UserStorage    string `json:"userStorage"`
	VirtualNetwork string `json:"virtualNetwork"`
}
