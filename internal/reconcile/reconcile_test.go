package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsec-tools/scmsync/internal/github"
	"github.com/appsec-tools/scmsync/internal/semgrep"
)

const serverURL = "https://ghes.example.com"

func config(namespace, baseURL string) semgrep.Config {
	return semgrep.Config{
		Type:      semgrep.ScmTypeGithubEnterprise,
		Namespace: namespace,
		BaseURL:   baseURL,
	}
}

func TestFindMissingOrganizations(t *testing.T) {
	orgs := []github.Organization{
		{ID: 1, Login: "alpha"},
		{ID: 2, Login: "bravo"},
		{ID: 3, Login: "charlie"},
	}

	t.Run("preserves order of missing orgs", func(t *testing.T) {
		configs := []semgrep.Config{config("bravo", serverURL)}
		missing, existing := FindMissingOrganizations(orgs, configs, serverURL)
		require.Len(t, missing, 2)
		assert.Equal(t, "alpha", missing[0].Login)
		assert.Equal(t, "charlie", missing[1].Login)
		assert.Len(t, existing, 1)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		configs := []semgrep.Config{config("ALPHA", "https://GHES.example.com/")}
		missing, _ := FindMissingOrganizations(orgs, configs, serverURL)
		require.Len(t, missing, 2)
		assert.Equal(t, "bravo", missing[0].Login)
	})

	t.Run("configs for another host do not count", func(t *testing.T) {
		configs := []semgrep.Config{config("alpha", "https://other.example.com")}
		missing, existing := FindMissingOrganizations(orgs, configs, serverURL)
		assert.Len(t, missing, 3)
		assert.Empty(t, existing)
	})

	t.Run("no orgs yields nothing missing", func(t *testing.T) {
		missing, _ := FindMissingOrganizations(nil, []semgrep.Config{config("alpha", serverURL)}, serverURL)
		assert.Empty(t, missing)
	})
}

func TestFilterConfigsByBaseURL(t *testing.T) {
	configs := []semgrep.Config{
		config("alpha", "https://ghes.example.com/"),
		config("bravo", "https://GHES.EXAMPLE.COM"),
		config("charlie", "https://elsewhere.example.com"),
		config("delta", ""),
	}

	matching := FilterConfigsByBaseURL(configs, serverURL)
	require.Len(t, matching, 2)
	assert.Equal(t, "alpha", matching[0].Namespace)
	assert.Equal(t, "bravo", matching[1].Namespace)
}

func TestMeetsRequirements(t *testing.T) {
	okStatus := &semgrep.Status{OK: true}
	badStatus := &semgrep.Status{OK: false, Error: "token rejected"}
	scopes := &semgrep.TokenScopes{ReadMetadata: true, ReadContents: true}

	tests := []struct {
		name     string
		status   *semgrep.Status
		scopes   *semgrep.TokenScopes
		required []string
		want     bool
	}{
		{"nil status fails", nil, scopes, nil, false},
		{"unhealthy fails", badStatus, scopes, nil, false},
		{"healthy no requirements", okStatus, nil, nil, true},
		{"healthy with granted scopes", okStatus, scopes, []string{ScopeReadMetadata}, true},
		{"healthy with missing scope", okStatus, scopes, []string{ScopeManageWebhooks}, false},
		{"healthy scopes unreported", okStatus, nil, []string{ScopeManageWebhooks}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsRequirements(tt.status, tt.scopes, tt.required))
		})
	}
}

func TestPartitionByHealth(t *testing.T) {
	healthyConfig := config("alpha", serverURL)
	healthyConfig.Status = &semgrep.Status{OK: true}

	unhealthyConfig := config("bravo", serverURL)
	unhealthyConfig.Status = &semgrep.Status{OK: false}

	repos := []semgrep.Repository{
		{ID: "1", Name: "alpha/widgets", URL: "https://ghes.example.com/alpha/widgets"},
		{ID: "2", Name: "bravo/tools", URL: "https://ghes.example.com/bravo/tools"},
		{ID: "3", Name: "orphan/lib", URL: "https://ghes.example.com/orphan/lib"},
		{ID: "4", Name: "no-url", URL: ""},
	}

	healthy, skipped := PartitionByHealth(repos, []semgrep.Config{healthyConfig, unhealthyConfig}, nil)

	require.Len(t, healthy, 1)
	assert.Equal(t, "1", healthy[0].ID)
	require.Len(t, skipped, 3)
	assert.Equal(t, "2", skipped[0].ID)
	assert.Equal(t, "3", skipped[1].ID)
	assert.Equal(t, "4", skipped[2].ID)
}

func TestPartitionByHealthDuplicateConfigs(t *testing.T) {
	// two configs for the same org; only one is healthy
	broken := config("alpha", serverURL)
	broken.Status = &semgrep.Status{OK: false}
	working := config("alpha", serverURL)
	working.Status = &semgrep.Status{OK: true}

	repos := []semgrep.Repository{
		{ID: "1", URL: "https://ghes.example.com/alpha/widgets"},
	}

	healthy, skipped := PartitionByHealth(repos, []semgrep.Config{broken, working}, nil)
	assert.Len(t, healthy, 1)
	assert.Empty(t, skipped)
}

func TestPartitionByHealthRequiredScopes(t *testing.T) {
	cfg := config("alpha", serverURL)
	cfg.Status = &semgrep.Status{OK: true}
	cfg.TokenScopes = &semgrep.TokenScopes{ReadMetadata: true}

	repos := []semgrep.Repository{
		{ID: "1", URL: "https://ghes.example.com/alpha/widgets"},
	}

	healthy, _ := PartitionByHealth(repos, []semgrep.Config{cfg}, []string{ScopeReadMetadata})
	assert.Len(t, healthy, 1)

	healthy, skipped := PartitionByHealth(repos, []semgrep.Config{cfg}, []string{ScopeManageWebhooks})
	assert.Empty(t, healthy)
	assert.Len(t, skipped, 1)
}

func TestMatchConfigsByNamespace(t *testing.T) {
	configs := []semgrep.Config{
		config("alpha", serverURL),
		config("ALPHA", serverURL),
		config("bravo", serverURL),
		config("alpha", "https://other.example.com"),
	}

	matching := MatchConfigsByNamespace(configs, serverURL, []string{"Alpha"})
	require.Len(t, matching, 2)
	assert.Equal(t, "alpha", matching[0].Namespace)
	assert.Equal(t, "ALPHA", matching[1].Namespace)
}

func TestApplyCheckResult(t *testing.T) {
	cfg := config("alpha", serverURL)
	check := &semgrep.CheckResult{
		Status:      semgrep.Status{OK: true},
		TokenScopes: &semgrep.TokenScopes{ReadContents: true},
	}

	ApplyCheckResult(&cfg, check)
	require.NotNil(t, cfg.Status)
	assert.True(t, cfg.Status.OK)
	require.NotNil(t, cfg.TokenScopes)
	assert.True(t, cfg.TokenScopes.ReadContents)

	ApplyCheckResult(&cfg, nil)
	assert.True(t, cfg.Status.OK)
}
