// Package reconcile computes the differences between the organizations known
// to a GitHub Enterprise Server and the SCM configs known to a Semgrep
// deployment. Every function here is pure: all fetching happens before these
// are called.
package reconcile

import (
	"github.com/appsec-tools/scmsync/internal/github"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/vcsurl"
)

// FilterConfigsByBaseURL returns the configs whose base URL matches the
// given server URL after normalization, preserving input order. Configs for
// the same namespace on a different host are intentionally excluded: there
// is no cross-host aliasing.
func FilterConfigsByBaseURL(configs []semgrep.Config, serverURL string) []semgrep.Config {
	normalized := vcsurl.NormalizeBaseURL(serverURL)
	var matching []semgrep.Config
	for _, config := range configs {
		if config.BaseURL == "" {
			continue
		}
		if vcsurl.NormalizeBaseURL(config.BaseURL) == normalized {
			matching = append(matching, config)
		}
	}
	return matching
}

// FindMissingOrganizations returns the server organizations that have no SCM
// config on this server, plus the configs filtered to the server URL.
// Matching is case-insensitive on both the base URL and the namespace, and
// the missing list preserves the input organization order.
func FindMissingOrganizations(orgs []github.Organization, configs []semgrep.Config, serverURL string) ([]github.Organization, []semgrep.Config) {
	existing := FilterConfigsByBaseURL(configs, serverURL)

	configured := make(map[string]struct{}, len(existing))
	for _, config := range existing {
		target := vcsurl.Target{BaseURL: config.BaseURL, Namespace: config.Namespace}
		configured[target.Key()] = struct{}{}
	}

	var missing []github.Organization
	for _, org := range orgs {
		target := vcsurl.Target{BaseURL: serverURL, Namespace: org.Login}
		if _, ok := configured[target.Key()]; !ok {
			missing = append(missing, org)
		}
	}

	return missing, existing
}

// PartitionByHealth splits repositories into those served by a config that
// meets the health requirements and those that are not. A repository with no
// parseable URL is skipped. Duplicate configs for one (base URL, namespace)
// pair are treated as a set: any one of them meeting the requirements makes
// the pair healthy. Input order is preserved on both sides.
func PartitionByHealth(repos []semgrep.Repository, configs []semgrep.Config, requiredScopes []string) (healthy, skipped []semgrep.Repository) {
	healthyTargets := make(map[string]struct{})
	for _, config := range configs {
		if config.BaseURL == "" {
			continue
		}
		if !ConfigMeetsRequirements(config, requiredScopes) {
			continue
		}
		target := vcsurl.Target{BaseURL: config.BaseURL, Namespace: config.Namespace}
		healthyTargets[target.Key()] = struct{}{}
	}

	for _, repo := range repos {
		target, ok := vcsurl.Extract(repo.URL)
		if !ok {
			skipped = append(skipped, repo)
			continue
		}
		if _, found := healthyTargets[target.Key()]; !found {
			skipped = append(skipped, repo)
			continue
		}
		healthy = append(healthy, repo)
	}

	return healthy, skipped
}

// MatchConfigsByNamespace returns the configs whose namespace matches one of
// the given organization names on the same server, preserving config order.
func MatchConfigsByNamespace(configs []semgrep.Config, serverURL string, orgNames []string) []semgrep.Config {
	wanted := make(map[string]struct{}, len(orgNames))
	for _, name := range orgNames {
		target := vcsurl.Target{BaseURL: serverURL, Namespace: name}
		wanted[target.Key()] = struct{}{}
	}

	var matching []semgrep.Config
	for _, config := range FilterConfigsByBaseURL(configs, serverURL) {
		target := vcsurl.Target{BaseURL: config.BaseURL, Namespace: config.Namespace}
		if _, ok := wanted[target.Key()]; ok {
			matching = append(matching, config)
		}
	}
	return matching
}
