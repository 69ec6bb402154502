package configs

import (
	"strings"

	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// validateCreateArgs validates the arguments provided to the create command.
func validateCreateArgs(options *createOptions) error {
	if strings.TrimSpace(options.Org) == "" {
		return errors.NewValidationError("the 'org' flag must be specified")
	}
	return nil
}

// validateCreateMissingArgs validates the arguments provided to the
// create-missing command.
func validateCreateMissingArgs(options *createMissingOptions) error {
	if len(options.Orgs) > 0 && options.OrgsFile != "" {
		return errors.NewValidationError("the 'orgs' and 'orgs-file' flags are mutually exclusive")
	}
	for _, org := range options.Orgs {
		if strings.TrimSpace(org) == "" {
			return errors.NewValidationError("the 'orgs' flag contains an empty organization name")
		}
	}
	return nil
}

// validateUpdateArgs requires at least one explicitly set setting flag, so
// an accidental bare invocation never patches anything.
func validateUpdateArgs(patch semgrep.ConfigPatch) error {
	if patch.IsZero() {
		return errors.NewValidationError("at least one setting flag must be set: 'subscribe', 'auto-scan', 'use-network-broker' or 'diff-enabled'")
	}
	return nil
}

// validateDeleteArgs requires an explicit, non-empty organization list
// before any network call is made.
func validateDeleteArgs(options *deleteOptions) error {
	if len(options.Orgs) == 0 {
		return errors.NewValidationError("the 'orgs' flag must list at least one organization; delete never derives its own target set")
	}
	for _, org := range options.Orgs {
		if strings.TrimSpace(org) == "" {
			return errors.NewValidationError("the 'orgs' flag contains an empty organization name")
		}
	}
	return nil
}
