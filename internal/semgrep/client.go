package semgrep

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
	"github.com/appsec-tools/scmsync/pkg/shared/httpclient"
)

// DefaultBaseURL is the public Semgrep API root.
const DefaultBaseURL = "https://semgrep.dev/api"

// Client provides access to the Semgrep API v2.
type Client struct {
	httpClient *httpclient.Client
	baseURL    string
	logger     hclog.Logger

	deploymentOnce sync.Once
	deployment     *Deployment
	deploymentErr  error
}

// New initializes a Semgrep API client authenticated with a bearer token.
func New(globalConfig *config.Config, logger hclog.Logger, baseURL, token string) (*Client, error) {
	httpClient, err := httpclient.New(logger, globalConfig)
	if err != nil {
		logger.Error("failed to initialize HTTP client", "error", err)
		return nil, err
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient.RestyClient.
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", token)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}, nil
}

// request returns a request builder bound to the shared resty client.
func (c *Client) request() *resty.Request {
	return c.httpClient.RestyClient.R()
}

// url joins a path with the API root.
func (c *Client) url(path string) string {
	return c.baseURL + path
}

// unmarshalResponse parses the JSON body from a response into the provided
// type, converting error statuses into an APIError carrying the body's
// message or error field.
func unmarshalResponse[T any](resp *resty.Response, out *T) error {
	if resp.StatusCode() >= 400 {
		var body apiErrorBody
		if err := json.Unmarshal(resp.Body(), &body); err == nil {
			if body.Message != "" {
				return errors.NewAPIError(resp.StatusCode(), body.Message)
			}
			if body.Error != "" {
				return errors.NewAPIError(resp.StatusCode(), body.Error)
			}
		}
		return errors.NewAPIError(resp.StatusCode(), resp.String())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type deploymentResponse struct {
	Deployment Deployment `json:"deployment"`
}

// GetDeployment fetches the deployment info for the current token.
func (c *Client) GetDeployment() (*Deployment, error) {
	resp, err := c.request().Get(c.url("/agent/deployment"))
	if err != nil {
		return nil, fmt.Errorf("error fetching deployment: %w", err)
	}

	var body deploymentResponse
	if err := unmarshalResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body.Deployment, nil
}

// Deployment returns the deployment for the current token, fetching it from
// the API on first use and memoizing it for the process lifetime.
func (c *Client) Deployment() (*Deployment, error) {
	c.deploymentOnce.Do(func() {
		c.deployment, c.deploymentErr = c.GetDeployment()
		if c.deploymentErr == nil {
			c.logger.Debug("resolved deployment",
				"id", c.deployment.ID,
				"slug", c.deployment.Slug,
			)
		}
	})
	return c.deployment, c.deploymentErr
}

// deploymentURL joins a deployment-scoped path with the API root.
func (c *Client) deploymentURL(format string, args ...interface{}) (string, error) {
	deployment, err := c.Deployment()
	if err != nil {
		return "", err
	}
	prefixed := append([]interface{}{deployment.ID}, args...)
	return c.url(fmt.Sprintf("/scm/deployments/%d"+format, prefixed...)), nil
}
