package vcsurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Target
		ok       bool
	}{
		{
			name:     "repository URL",
			input:    "https://github.com/acme/widgets",
			expected: Target{BaseURL: "https://github.com", Namespace: "acme"},
			ok:       true,
		},
		{
			name:     "organization URL",
			input:    "https://ghes.example.com/Platform-Team",
			expected: Target{BaseURL: "https://ghes.example.com", Namespace: "Platform-Team"},
			ok:       true,
		},
		{
			name:     "host with port",
			input:    "https://ghes.example.com:8443/acme/widgets",
			expected: Target{BaseURL: "https://ghes.example.com:8443", Namespace: "acme"},
			ok:       true,
		},
		{
			name:  "empty path",
			input: "https://github.com",
			ok:    false,
		},
		{
			name:  "slash-only path",
			input: "https://github.com/",
			ok:    false,
		},
		{
			name:  "missing scheme",
			input: "github.com/acme/widgets",
			ok:    false,
		},
		{
			name:  "garbage",
			input: "://not-a-url",
			ok:    false,
		},
		{
			name:  "empty string",
			input: "",
			ok:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Extract(tc.input)
			assert.Equal(t, tc.ok, ok, "ok mismatch")
			if tc.ok {
				assert.Equal(t, tc.expected.BaseURL, got.BaseURL, "BaseURL mismatch")
				assert.Equal(t, tc.expected.Namespace, got.Namespace, "Namespace mismatch")
			}
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://ghes.example.com", NormalizeBaseURL("https://GHES.Example.com///"))
	assert.Equal(t, "https://ghes.example.com", NormalizeBaseURL("https://ghes.example.com"))
}

func TestTargetKeyEquality(t *testing.T) {
	testCases := []struct {
		name  string
		a     Target
		b     Target
		equal bool
	}{
		{
			name:  "case folding and trailing slash",
			a:     Target{BaseURL: "https://GHES.Example.com/", Namespace: "Acme"},
			b:     Target{BaseURL: "https://ghes.example.com", Namespace: "acme"},
			equal: true,
		},
		{
			name:  "different host",
			a:     Target{BaseURL: "https://ghes.example.com", Namespace: "acme"},
			b:     Target{BaseURL: "https://ghes.internal.example.com", Namespace: "acme"},
			equal: false,
		},
		{
			name:  "different protocol",
			a:     Target{BaseURL: "http://ghes.example.com", Namespace: "acme"},
			b:     Target{BaseURL: "https://ghes.example.com", Namespace: "acme"},
			equal: false,
		},
		{
			name:  "different namespace",
			a:     Target{BaseURL: "https://ghes.example.com", Namespace: "acme"},
			b:     Target{BaseURL: "https://ghes.example.com", Namespace: "acme-labs"},
			equal: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, tc.a.Equal(tc.b))
			assert.Equal(t, tc.equal, tc.a.Key() == tc.b.Key())
		})
	}
}
