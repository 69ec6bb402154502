package semgrep

import (
	"fmt"
	"net/url"
)

type listScansResponse struct {
	Scans  []Scan `json:"scans"`
	Cursor string `json:"cursor"`
}

// ListProjectScans retrieves the scan history of one project, optionally
// filtered by scan types and statuses, draining every page.
func (c *Client) ListProjectScans(projectID string, types, statuses []string) ([]Scan, error) {
	path, err := c.deploymentURL("/projects/%s/scans", url.PathEscape(projectID))
	if err != nil {
		return nil, err
	}

	var scans []Scan
	cursor := ""

	for {
		query := url.Values{}
		for _, t := range types {
			query.Add("types", t)
		}
		for _, s := range statuses {
			query.Add("statuses", s)
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		resp, err := c.request().SetQueryParamsFromValues(query).Get(path)
		if err != nil {
			return nil, fmt.Errorf("error fetching scans for project %q: %w", projectID, err)
		}

		var page listScansResponse
		if err := unmarshalResponse(resp, &page); err != nil {
			return nil, err
		}

		scans = append(scans, page.Scans...)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	return scans, nil
}

type triggerScansBody struct {
	RepositoryIDs []string `json:"repositoryIds"`
}

// TriggerScans requests scans for the given repositories and returns the raw
// response body for reporting.
func (c *Client) TriggerScans(repoIDs []string) (string, error) {
	path, err := c.deploymentURL("/scans/trigger")
	if err != nil {
		return "", err
	}

	resp, err := c.request().SetBody(triggerScansBody{RepositoryIDs: repoIDs}).Post(path)
	if err != nil {
		return "", fmt.Errorf("error triggering scans for %d repositories: %w", len(repoIDs), err)
	}

	if err := unmarshalResponse[struct{}](resp, nil); err != nil {
		return "", err
	}
	return resp.String(), nil
}
