package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

func TestParseScopeNames(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{
			name:  "valid names normalized",
			input: []string{" Read_Metadata ", "WRITE_CONTENTS"},
			want:  []string{"read_metadata", "write_contents"},
		},
		{
			name:  "blank entries skipped",
			input: []string{"", "  ", "read_members"},
			want:  []string{"read_members"},
		},
		{
			name:    "unknown name rejected",
			input:   []string{"read_metadata", "admin_everything"},
			wantErr: true,
		},
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScopeNames(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *errors.ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingScopes(t *testing.T) {
	scopes := semgrep.TokenScopes{
		ReadMetadata: true,
		ReadContents: true,
	}

	missing := MissingScopes(scopes, []string{ScopeManageWebhooks, ScopeReadMetadata, ScopeWriteContents})
	assert.Equal(t, []string{ScopeManageWebhooks, ScopeWriteContents}, missing)

	assert.True(t, HasScopes(scopes, []string{ScopeReadMetadata, ScopeReadContents}))
	assert.False(t, HasScopes(scopes, []string{ScopeReadMembers}))
	assert.True(t, HasScopes(scopes, nil))
}

func TestKnownScopesIsCopy(t *testing.T) {
	scopes := KnownScopes()
	require.Len(t, scopes, 7)
	scopes[0] = "mutated"
	assert.Equal(t, ScopeReadMetadata, KnownScopes()[0])
}
