package semgrep

import (
	"fmt"
)

type listConfigsResponse struct {
	Configs []Config `json:"configs"`
	Cursor  string   `json:"cursor"`
}

// ListConfigs retrieves all SCM configs for the deployment, draining every
// page of the cursor-paginated endpoint.
func (c *Client) ListConfigs() ([]Config, error) {
	path, err := c.deploymentURL("/configs")
	if err != nil {
		return nil, err
	}

	var configs []Config
	cursor := ""

	c.logger.Info("fetching list of SCM configs")
	for {
		req := c.request()
		if cursor != "" {
			req.SetQueryParam("cursor", cursor)
		}
		c.logger.Debug("fetching page of SCM configs", "cursor", cursor)

		resp, err := req.Get(path)
		if err != nil {
			return nil, fmt.Errorf("error fetching SCM configs: %w", err)
		}

		var body listConfigsResponse
		if err := unmarshalResponse(resp, &body); err != nil {
			return nil, err
		}

		configs = append(configs, body.Configs...)
		if body.Cursor == "" {
			break
		}
		cursor = body.Cursor
	}

	c.logger.Debug("successfully fetched all SCM configs", "totalConfigs", len(configs))
	return configs, nil
}

// CreateConfigRequest carries the settings for a new SCM config. Exactly one
// of AccessToken and ScmConfigID should be set: the latter reuses the
// credential stored on an existing config.
type CreateConfigRequest struct {
	Type        string
	Namespace   string
	BaseURL     string
	AccessToken string
	ScmConfigID int64
	Subscribe   bool
	AutoScan    bool
	DiffEnabled bool
}

type autoScanSettings struct {
	DiffEnabled bool `json:"diffEnabled"`
}

type createConfigBody struct {
	Type             string           `json:"type"`
	Namespace        string           `json:"namespace"`
	BaseURL          string           `json:"baseUrl"`
	Subscribe        bool             `json:"subscribe"`
	AutoScan         bool             `json:"autoScan"`
	AutoScanSettings autoScanSettings `json:"autoScanSettings"`
	AccessToken      string           `json:"accessToken,omitempty"`
	ScmConfigID      int64            `json:"scmConfigId,omitempty"`
}

type configResponse struct {
	Config Config `json:"config"`
}

// CreateConfig creates a new SCM config for the deployment.
func (c *Client) CreateConfig(req CreateConfigRequest) (*Config, error) {
	path, err := c.deploymentURL("/configs")
	if err != nil {
		return nil, err
	}

	body := createConfigBody{
		Type:             req.Type,
		Namespace:        req.Namespace,
		BaseURL:          req.BaseURL,
		Subscribe:        req.Subscribe,
		AutoScan:         req.AutoScan,
		AutoScanSettings: autoScanSettings{DiffEnabled: req.DiffEnabled},
		AccessToken:      req.AccessToken,
		ScmConfigID:      req.ScmConfigID,
	}

	resp, err := c.request().SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("error creating SCM config for %q: %w", req.Namespace, err)
	}

	var result configResponse
	if err := unmarshalResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result.Config, nil
}

// ConfigPatch describes a partial update of an SCM config. Only non-nil
// fields are sent to the API.
type ConfigPatch struct {
	Subscribe        *bool
	AutoScan         *bool
	UseNetworkBroker *bool
	DiffEnabled      *bool
}

// IsZero reports whether the patch carries no updates.
func (p ConfigPatch) IsZero() bool {
	return p.Subscribe == nil && p.AutoScan == nil && p.UseNetworkBroker == nil && p.DiffEnabled == nil
}

// body serializes the patch, including only the fields that were set.
func (p ConfigPatch) body() map[string]interface{} {
	body := make(map[string]interface{})
	if p.Subscribe != nil {
		body["subscribe"] = *p.Subscribe
	}
	if p.AutoScan != nil {
		body["autoScan"] = *p.AutoScan
	}
	if p.UseNetworkBroker != nil {
		body["useNetworkBroker"] = *p.UseNetworkBroker
	}
	if p.DiffEnabled != nil {
		body["autoScanSettings"] = map[string]interface{}{"diffEnabled": *p.DiffEnabled}
	}
	return body
}

// PatchConfig updates an existing SCM config with the non-nil patch fields.
func (c *Client) PatchConfig(configID string, patch ConfigPatch) (*Config, error) {
	path, err := c.deploymentURL("/configs/%s", configID)
	if err != nil {
		return nil, err
	}

	resp, err := c.request().SetBody(patch.body()).Patch(path)
	if err != nil {
		return nil, fmt.Errorf("error updating SCM config %q: %w", configID, err)
	}

	var result configResponse
	if err := unmarshalResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result.Config, nil
}

// DeleteConfig removes an SCM config.
func (c *Client) DeleteConfig(configID string) error {
	path, err := c.deploymentURL("/configs/%s", configID)
	if err != nil {
		return err
	}

	resp, err := c.request().Delete(path)
	if err != nil {
		return fmt.Errorf("error deleting SCM config %q: %w", configID, err)
	}
	return unmarshalResponse[struct{}](resp, nil)
}

// CheckConfig runs a connectivity check for an SCM config, returning the
// fresh status and, when the server reports them, the credential's scopes.
func (c *Client) CheckConfig(configID string) (*CheckResult, error) {
	path, err := c.deploymentURL("/configs/%s/check", configID)
	if err != nil {
		return nil, err
	}

	resp, err := c.request().Get(path)
	if err != nil {
		return nil, fmt.Errorf("error checking SCM config %q: %w", configID, err)
	}

	var result CheckResult
	if err := unmarshalResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
