package vcsurl

import (
	"net/url"
	"strings"
)

// Target identifies an organization or user namespace on a specific SCM host.
// It is the join key between server-side entities (orgs, repositories) and
// Semgrep SCM configs; all set operations over those universes must go
// through Key, never through raw field comparison.
type Target struct {
	BaseURL   string
	Namespace string
}

// NormalizeBaseURL strips trailing slashes and lowercases a base URL so that
// equivalent spellings compare equal.
func NormalizeBaseURL(baseURL string) string {
	return strings.ToLower(strings.TrimRight(baseURL, "/"))
}

// Extract parses a repository or organization URL into its scheme://host base
// URL and the first path segment as the namespace. Malformed URLs and URLs
// without a path are routine input, reported with ok=false rather than an
// error.
func Extract(raw string) (Target, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Target{}, false
	}

	segments := pathSegments(parsed.Path)
	if len(segments) == 0 {
		return Target{}, false
	}

	return Target{
		BaseURL:   parsed.Scheme + "://" + parsed.Host,
		Namespace: segments[0],
	}, true
}

// Key returns the normalized join key for the target. Two targets refer to
// the same namespace iff their keys are equal.
func (t Target) Key() string {
	return NormalizeBaseURL(t.BaseURL) + "\n" + strings.ToLower(t.Namespace)
}

// Equal reports whether two targets refer to the same namespace after
// normalization.
func (t Target) Equal(other Target) bool {
	return t.Key() == other.Key()
}

// pathSegments splits a URL path and removes empty elements.
func pathSegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
