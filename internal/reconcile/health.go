package reconcile

import (
	"github.com/appsec-tools/scmsync/internal/semgrep"
)

// MeetsRequirements reports whether one config's health satisfies the
// caller's criteria. Connectivity failure always fails. When required scopes
// were given, the check fails only if scopes were reported and one is
// absent: a healthy response that did not report scopes is not evidence of
// non-possession, so callers that gate on scopes must obtain them through a
// connectivity check that fetches scopes.
func MeetsRequirements(status *semgrep.Status, scopes *semgrep.TokenScopes, requiredScopes []string) bool {
	if status == nil || !status.OK {
		return false
	}
	if len(requiredScopes) == 0 {
		return true
	}
	if scopes == nil {
		// scopes unknown; see MeetsRequirements doc
		return true
	}
	return HasScopes(*scopes, requiredScopes)
}

// ConfigMeetsRequirements evaluates a config using its recorded status and
// scopes. Commands that run fresh connectivity checks write the CheckResult
// back onto the config before calling this.
func ConfigMeetsRequirements(config semgrep.Config, requiredScopes []string) bool {
	return MeetsRequirements(config.Status, config.TokenScopes, requiredScopes)
}

// ApplyCheckResult copies a fresh connectivity check onto a config snapshot.
func ApplyCheckResult(config *semgrep.Config, check *semgrep.CheckResult) {
	if check == nil {
		return
	}
	status := check.Status
	config.Status = &status
	if check.TokenScopes != nil {
		config.TokenScopes = check.TokenScopes
	}
}
