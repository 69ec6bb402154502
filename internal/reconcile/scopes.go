package reconcile

import (
	"strings"

	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Scope names accepted by required-scopes checks. The set is closed; unknown
// names are rejected at parse time, never silently ignored.
const (
	ScopeReadMetadata            = "read_metadata"
	ScopeReadPullRequest         = "read_pull_request"
	ScopeWritePullRequestComment = "write_pull_request_comment"
	ScopeReadContents            = "read_contents"
	ScopeReadMembers             = "read_members"
	ScopeManageWebhooks          = "manage_webhooks"
	ScopeWriteContents           = "write_contents"
)

// scopeAccessors maps each scope name to its strongly-typed field. Lookups
// never reflect over field names at runtime.
var scopeAccessors = map[string]func(semgrep.TokenScopes) bool{
	ScopeReadMetadata:            func(ts semgrep.TokenScopes) bool { return ts.ReadMetadata },
	ScopeReadPullRequest:         func(ts semgrep.TokenScopes) bool { return ts.ReadPullRequest },
	ScopeWritePullRequestComment: func(ts semgrep.TokenScopes) bool { return ts.WritePullRequestComment },
	ScopeReadContents:            func(ts semgrep.TokenScopes) bool { return ts.ReadContents },
	ScopeReadMembers:             func(ts semgrep.TokenScopes) bool { return ts.ReadMembers },
	ScopeManageWebhooks:          func(ts semgrep.TokenScopes) bool { return ts.ManageWebhooks },
	ScopeWriteContents:           func(ts semgrep.TokenScopes) bool { return ts.WriteContents },
}

// knownScopeNames keeps a stable order for error messages and help output.
var knownScopeNames = []string{
	ScopeReadMetadata,
	ScopeReadPullRequest,
	ScopeWritePullRequestComment,
	ScopeReadContents,
	ScopeReadMembers,
	ScopeManageWebhooks,
	ScopeWriteContents,
}

// KnownScopes returns the closed set of scope names in a stable order.
func KnownScopes() []string {
	scopes := make([]string, len(knownScopeNames))
	copy(scopes, knownScopeNames)
	return scopes
}

// ParseScopeNames validates a list of required scope names against the
// closed set. Unknown names yield a ValidationError.
func ParseScopeNames(names []string) ([]string, error) {
	var scopes []string
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, ok := scopeAccessors[normalized]; !ok {
			return nil, errors.NewValidationError(
				"unknown scope %q; known scopes: %s", name, strings.Join(knownScopeNames, ", "))
		}
		scopes = append(scopes, normalized)
	}
	return scopes, nil
}

// HasScopes reports whether every required scope is present. Names must
// already be validated.
func HasScopes(scopes semgrep.TokenScopes, required []string) bool {
	return len(MissingScopes(scopes, required)) == 0
}

// MissingScopes returns the subset of required scope names not granted,
// preserving the input order.
func MissingScopes(scopes semgrep.TokenScopes, required []string) []string {
	var missing []string
	for _, name := range required {
		accessor, ok := scopeAccessors[name]
		if !ok || !accessor(scopes) {
			missing = append(missing, name)
		}
	}
	return missing
}
