package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidateCreateArgs(t *testing.T) {
	assertValidationError(t, validateCreateArgs(&createOptions{}))
	assertValidationError(t, validateCreateArgs(&createOptions{Org: "   "}))
	assert.NoError(t, validateCreateArgs(&createOptions{Org: "acme"}))
}

func TestValidateCreateMissingArgs(t *testing.T) {
	assertValidationError(t, validateCreateMissingArgs(&createMissingOptions{
		Orgs:     []string{"acme"},
		OrgsFile: "orgs.txt",
	}))
	assertValidationError(t, validateCreateMissingArgs(&createMissingOptions{
		Orgs: []string{"acme", ""},
	}))
	assert.NoError(t, validateCreateMissingArgs(&createMissingOptions{}))
	assert.NoError(t, validateCreateMissingArgs(&createMissingOptions{Orgs: []string{"acme"}}))
	assert.NoError(t, validateCreateMissingArgs(&createMissingOptions{OrgsFile: "orgs.txt"}))
}

func TestValidateUpdateArgs(t *testing.T) {
	assertValidationError(t, validateUpdateArgs(semgrep.ConfigPatch{}))

	autoScan := true
	assert.NoError(t, validateUpdateArgs(semgrep.ConfigPatch{AutoScan: &autoScan}))
}

func TestValidateDeleteArgsRequiresExplicitOrgs(t *testing.T) {
	// an absent or blank list must fail before any network call
	assertValidationError(t, validateDeleteArgs(&deleteOptions{}))
	assertValidationError(t, validateDeleteArgs(&deleteOptions{Orgs: []string{}}))
	assertValidationError(t, validateDeleteArgs(&deleteOptions{Orgs: []string{"acme", "  "}}))

	assert.NoError(t, validateDeleteArgs(&deleteOptions{Orgs: []string{"acme"}}))
}
