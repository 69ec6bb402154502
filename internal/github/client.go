package github

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
	"github.com/appsec-tools/scmsync/pkg/shared/httpclient"
)

// orgPageSize is the page size for the organizations endpoint; a page with
// fewer entries terminates pagination.
const orgPageSize = 100

// Client provides access to the GitHub Enterprise Server REST API.
type Client struct {
	httpClient *httpclient.Client
	baseURL    string
	logger     hclog.Logger
}

// New initializes a GHES API client. The base URL is normalized to the
// /api/v3 REST root, accepting either the bare server URL or the full path.
func New(globalConfig *config.Config, logger hclog.Logger, baseURL, token string) (*Client, error) {
	httpClient, err := httpclient.New(logger, globalConfig)
	if err != nil {
		logger.Error("failed to initialize HTTP client", "error", err)
		return nil, err
	}

	normalized := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(normalized, "/api/v3") {
		normalized += "/api/v3"
	}

	httpClient.RestyClient.
		SetHeader("Authorization", fmt.Sprintf("token %s", token)).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")

	return &Client{
		httpClient: httpClient,
		baseURL:    normalized,
		logger:     logger,
	}, nil
}

// get sends a GET request relative to the API root.
func (c *Client) get(path string, queryParams map[string]string) (*resty.Response, error) {
	return c.httpClient.RestyClient.R().
		SetQueryParams(queryParams).
		Get(c.baseURL + path)
}

// unmarshalResponse parses the JSON body from a response into the provided
// type, converting error statuses into an APIError carrying the body message.
func unmarshalResponse[T any](resp *resty.Response, out *T) error {
	if resp.StatusCode() >= 400 {
		var body apiError
		if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
			return errors.NewAPIError(resp.StatusCode(), body.Message)
		}
		return errors.NewAPIError(resp.StatusCode(), resp.String())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// ListOrganizations retrieves every organization on the GHES instance.
// The endpoint requires admin access and paginates with the 'since'
// parameter set to the last seen organization id.
func (c *Client) ListOrganizations() ([]Organization, error) {
	var orgs []Organization
	var since int64

	c.logger.Info("fetching list of organizations", "server", c.baseURL)

	for {
		query := map[string]string{
			"per_page": strconv.Itoa(orgPageSize),
		}
		if since > 0 {
			query["since"] = strconv.FormatInt(since, 10)
		}
		c.logger.Debug("fetching page of organizations", "since", since)

		response, err := c.get("/organizations", query)
		if err != nil {
			return nil, fmt.Errorf("error fetching organizations: %w", err)
		}

		var page []Organization
		if err := unmarshalResponse(response, &page); err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		orgs = append(orgs, page...)
		since = page[len(page)-1].ID

		if len(page) < orgPageSize {
			break
		}
	}

	c.logger.Debug("successfully fetched all organizations", "totalOrganizations", len(orgs))
	return orgs, nil
}
