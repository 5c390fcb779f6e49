package params

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/ragops/planner/pkg/errors"
)

func validSet() Set {
	s := Defaults()
	s.EnvironmentName = "dev"
	s.Location = "eastus"
	s.SubscriptionID = "00000000-0000-0000-0000-000000000001"
	s.TenantID = "00000000-0000-0000-0000-0000000000aa"
	s.PrincipalID = "00000000-0000-0000-0000-0000000000bb"
	s.OpenAILocation = "eastus"
	s.DocumentIntelligenceLocation = "eastus"
	s.Normalize()
	return s
}

func TestValidateAcceptsBaseline(t *testing.T) {
	s := validSet()
	require.NoError(t, s.Validate())
}

func TestValidateReportsViolatedField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Set)
		field  string
	}{
		{"missing environment name", func(s *Set) { s.EnvironmentName = "" }, "EnvironmentName"},
		{"missing subscription", func(s *Set) { s.SubscriptionID = "" }, "SubscriptionID"},
		{"bad deployment target", func(s *Set) { s.DeploymentTarget = "vm" }, "DeploymentTarget"},
		{"bad host", func(s *Set) { s.OpenAIHost = "local" }, "OpenAIHost"},
		{"bad model region", func(s *Set) { s.OpenAILocation = "westus" }, "OpenAILocation"},
		{"missing extraction region", func(s *Set) { s.DocumentIntelligenceLocation = "" }, "DocumentIntelligenceLocation"},
		{"bad extraction region", func(s *Set) { s.DocumentIntelligenceLocation = "eastus2" }, "DocumentIntelligenceLocation"},
		{"bad network access", func(s *Set) { s.PublicNetworkAccess = "Maybe" }, "PublicNetworkAccess"},
		{"storage name too short", func(s *Set) { s.StorageAccountName = "ab" }, "StorageAccountName"},
		{"storage name not alphanum", func(s *Set) { s.StorageAccountName = "my-storage" }, "StorageAccountName"},
		{"storage name uppercase", func(s *Set) { s.StorageAccountName = "MyStorage01" }, "StorageAccountName"},
		{"registry name too short", func(s *Set) { s.ContainerRegistryName = "abcd" }, "ContainerRegistryName"},
		{"negative capacity", func(s *Set) { s.ChatDeploymentCapacity = -1 }, "ChatDeploymentCapacity"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSet()
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			require.True(t, appErr.IsCode(err, appErr.CodeValidation))
			require.Equal(t, tc.field, appErr.Field(err))
		})
	}
}

func TestModelRegionOnlyRequiredForManagedHost(t *testing.T) {
	s := validSet()
	s.OpenAIHost = HostOpenAI
	s.OpenAIAPIKey = "sk-test"
	s.OpenAILocation = ""
	require.NoError(t, s.Validate())
}

func TestNormalizeLowercasesEnums(t *testing.T) {
	s := validSet()
	s.DeploymentTarget = "AppService"
	s.OpenAIHost = "Azure"
	s.Normalize()
	require.Equal(t, TargetAppService, s.DeploymentTarget)
	require.Equal(t, HostAzure, s.OpenAIHost)
}

func TestNormalizeDefaultsAuthTenant(t *testing.T) {
	s := validSet()
	s.AuthTenantID = ""
	s.Normalize()
	require.Equal(t, s.TenantID, s.AuthTenantID)

	s.AuthTenantID = "separate-tenant"
	s.Normalize()
	require.Equal(t, "separate-tenant", s.AuthTenantID)
}

func TestPrincipalTypeFollowsPipelineFlag(t *testing.T) {
	s := validSet()
	require.Equal(t, PrincipalUser, s.PrincipalType())
	s.RunningInPipeline = true
	require.Equal(t, PrincipalServicePrincipal, s.PrincipalType())
}

func TestFromEnvAppliesDefaults(t *testing.T) {
	t.Setenv("AZURE_ENV_NAME", "fromenv")
	t.Setenv("AZURE_LOCATION", "eastus")
	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-1")
	t.Setenv("AZURE_TENANT_ID", "tenant-1")
	t.Setenv("AZURE_OPENAI_LOCATION", "eastus")
	t.Setenv("AZURE_DOCUMENTINTELLIGENCE_LOCATION", "eastus")

	s, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "fromenv", s.EnvironmentName)
	require.Equal(t, TargetAppService, s.DeploymentTarget)
	require.Equal(t, HostAzure, s.OpenAIHost)
	require.True(t, s.DeployAzureOpenAI)
	require.Equal(t, "gptkbindex", s.SearchIndexName)
	require.Equal(t, "content", s.StorageContainerName)
	require.Equal(t, "tenant-1", s.AuthTenantID)
}

func TestFromEnvRejectsInvalidInput(t *testing.T) {
	t.Setenv("AZURE_ENV_NAME", "fromenv")
	t.Setenv("AZURE_LOCATION", "eastus")
	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-1")
	t.Setenv("AZURE_TENANT_ID", "tenant-1")
	t.Setenv("AZURE_OPENAI_LOCATION", "eastus")
	t.Setenv("AZURE_DOCUMENTINTELLIGENCE_LOCATION", "eastus")
	t.Setenv("DEPLOYMENT_TARGET", "kubernetes")

	_, err := FromEnv()
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeValidation))
}
