package github

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(&config.Config{}, hclog.NewNullLogger(), baseURL, "test-token")
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient.RestyClient.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func orgPage(firstID, count int) string {
	page := "["
	for i := 0; i < count; i++ {
		if i > 0 {
			page += ","
		}
		id := firstID + i
		page += fmt.Sprintf(`{"id": %d, "login": "org-%d"}`, id, id)
	}
	return page + "]"
}

func TestNewNormalizesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"bare server URL", "https://ghes.example.com"},
		{"trailing slash", "https://ghes.example.com/"},
		{"full API root", "https://ghes.example.com/api/v3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.baseURL)
			assert.Equal(t, "https://ghes.example.com/api/v3", client.baseURL)
		})
	}
}

func TestListOrganizationsPaginatesWithSince(t *testing.T) {
	client := newTestClient(t, "https://ghes.example.com")

	var sinceParams []string
	httpmock.RegisterResponder(http.MethodGet, "https://ghes.example.com/api/v3/organizations",
		func(req *http.Request) (*http.Response, error) {
			since := req.URL.Query().Get("since")
			sinceParams = append(sinceParams, since)
			assert.Equal(t, "100", req.URL.Query().Get("per_page"))

			switch since {
			case "":
				return httpmock.NewStringResponse(http.StatusOK, orgPage(1, 100)), nil
			case "100":
				return httpmock.NewStringResponse(http.StatusOK, orgPage(101, 3)), nil
			default:
				return httpmock.NewStringResponse(http.StatusOK, "[]"), nil
			}
		})

	orgs, err := client.ListOrganizations()
	require.NoError(t, err)
	assert.Len(t, orgs, 103)
	assert.Equal(t, "org-1", orgs[0].Login)
	assert.Equal(t, "org-103", orgs[102].Login)
	// a short page ends pagination without another request
	assert.Equal(t, []string{"", "100"}, sinceParams)
}

func TestListOrganizationsEmptyFirstPage(t *testing.T) {
	client := newTestClient(t, "https://ghes.example.com")

	httpmock.RegisterResponder(http.MethodGet, "https://ghes.example.com/api/v3/organizations",
		httpmock.NewStringResponder(http.StatusOK, "[]"))

	orgs, err := client.ListOrganizations()
	require.NoError(t, err)
	assert.Empty(t, orgs)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestListOrganizationsAPIError(t *testing.T) {
	client := newTestClient(t, "https://ghes.example.com")

	httpmock.RegisterResponder(http.MethodGet, "https://ghes.example.com/api/v3/organizations",
		httpmock.NewStringResponder(http.StatusForbidden, `{"message": "Must be a site admin"}`))

	_, err := client.ListOrganizations()
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Must be a site admin", apiErr.Message)
}
