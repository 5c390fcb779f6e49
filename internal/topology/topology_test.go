package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ragops/planner/internal/params"
	appErr "github.com/ragops/planner/pkg/errors"
)

func baseParams() *params.Set {
	s := params.Defaults()
	s.EnvironmentName = "dev"
	s.Location = "eastus"
	s.SubscriptionID = "00000000-0000-0000-0000-000000000001"
	s.TenantID = "00000000-0000-0000-0000-0000000000aa"
	s.PrincipalID = "00000000-0000-0000-0000-0000000000bb"
	s.OpenAILocation = "eastus"
	s.DocumentIntelligenceLocation = "eastus"
	s.Normalize()
	return &s
}

func TestTokenIsDeterministic(t *testing.T) {
	a := Token("sub-1", "dev", "eastus")
	b := Token("sub-1", "dev", "eastus")
	require.Equal(t, a, b)
	require.Len(t, a, tokenLength)
	// Lowercase base32 only.
	for _, r := range a {
		require.True(t, (r >= 'a' && r <= 'z') || (r >= '2' && r <= '7'), "unexpected rune %q", r)
	}
}

func TestTokenVariesWithEveryInput(t *testing.T) {
	base := Token("sub-1", "dev", "eastus")
	require.NotEqual(t, base, Token("sub-2", "dev", "eastus"))
	require.NotEqual(t, base, Token("sub-1", "prod", "eastus"))
	require.NotEqual(t, base, Token("sub-1", "dev", "westeurope"))
}

func TestResolveDerivesDefaultNames(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)

	tok := topo.Token
	require.Equal(t, "rg-"+tok, topo.Names.ResourceGroup)
	require.Equal(t, "gptkb-"+tok, topo.Names.Search)
	require.Equal(t, "st"+tok, topo.Names.Storage)
	require.Equal(t, "userst"+tok, topo.Names.UserStorage)
	require.Equal(t, "cog-"+tok, topo.Names.OpenAI)
	require.Equal(t, "cog-di-"+tok, topo.Names.DocExtraction)
	require.Equal(t, "app-backend-"+tok, topo.Names.BackendApp)
	require.Equal(t, "vnet-"+tok, topo.Names.VirtualNetwork)
}

func TestResolveHonorsNameOverrides(t *testing.T) {
	p := baseParams()
	p.SearchServiceName = "my-search"
	p.StorageAccountName = "mystorage01"
	p.ResourceGroupName = "rg-existing"

	topo, err := Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "my-search", topo.Names.Search)
	require.Equal(t, "mystorage01", topo.Names.Storage)
	require.Equal(t, "rg-existing", topo.Names.ResourceGroup)
	// Non-overridden names still derive.
	require.Equal(t, "cog-"+topo.Token, topo.Names.OpenAI)
}

func TestResolveBackendNamePrefixFollowsTarget(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "app-backend-"+topo.Token, topo.Names.BackendApp)

	p.DeploymentTarget = params.TargetContainerApps
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "ca-backend-"+topo.Token, topo.Names.BackendApp)
}

func TestResolveRejectsCustomHostWithoutURL(t *testing.T) {
	p := baseParams()
	p.OpenAIHost = params.HostAzureCustom
	p.AzureOpenAICustomURL = ""

	topo, err := Resolve(p)
	require.Nil(t, topo)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	require.Equal(t, "AzureOpenAICustomURL", appErr.Field(err))
}

func TestResolveRejectsExternalHostWithoutKey(t *testing.T) {
	p := baseParams()
	p.OpenAIHost = params.HostOpenAI
	p.OpenAIAPIKey = ""

	_, err := Resolve(p)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestResolveRejectsUserUploadIntoUnnamedExternalStorage(t *testing.T) {
	p := baseParams()
	p.UseUserUpload = true
	p.StorageResourceGroupName = "rg-shared-storage"

	_, err := Resolve(p)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	require.Equal(t, "UserStorageAccountName", appErr.Field(err))

	// Naming the account resolves the conflict.
	p.UserStorageAccountName = "userst01"
	_, err = Resolve(p)
	require.NoError(t, err)
}

func TestResolveChatProfileSelection(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", topo.Chat.ModelName)
	require.Equal(t, 30, topo.Chat.Capacity)

	p.UseAdvancedChatModel = true
	p.ChatDeploymentCapacity = 80
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", topo.Chat.ModelName)
	require.Equal(t, "2024-08-06", topo.Chat.ModelVersion)
	require.Equal(t, 80, topo.Chat.Capacity)
}

func TestResolveEmbeddingDefaults(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "text-embedding-ada-002", topo.Embedding.ModelName)
	require.Equal(t, 1536, topo.Embedding.Dimensions)
	require.Equal(t, 30, topo.Embedding.Capacity)

	p.EmbeddingModelName = "text-embedding-3-large"
	p.EmbeddingDimensions = 3072
	p.EmbeddingDeploymentCapacity = 60
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.Equal(t, "text-embedding-3-large", topo.Embedding.ModelName)
	require.Equal(t, 3072, topo.Embedding.Dimensions)
	require.Equal(t, 60, topo.Embedding.Capacity)
}

func TestResolveVisionProfileOnlyWithMultimodal(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)
	require.Nil(t, topo.Vision)

	p.UseGPT4V = true
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.NotNil(t, topo.Vision)
	require.Equal(t, "gpt4v", topo.Vision.DeploymentName)
}

func TestResolveHostModeFlags(t *testing.T) {
	p := baseParams()
	topo, err := Resolve(p)
	require.NoError(t, err)
	require.True(t, topo.IsAzureHosted)
	require.True(t, topo.DeployModelAccount)

	p.DeployAzureOpenAI = false
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.True(t, topo.IsAzureHosted)
	require.False(t, topo.DeployModelAccount)

	p.DeployAzureOpenAI = true
	p.OpenAIHost = params.HostAzureCustom
	p.AzureOpenAICustomURL = "https://example.openai.azure.com"
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.True(t, topo.IsAzureHosted)
	require.False(t, topo.DeployModelAccount)

	p.OpenAIHost = params.HostOpenAI
	p.OpenAIAPIKey = "sk-test"
	topo, err = Resolve(p)
	require.NoError(t, err)
	require.False(t, topo.IsAzureHosted)
	require.False(t, topo.DeployModelAccount)
}
