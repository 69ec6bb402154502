package semgrep

import (
	"fmt"
)

// RepositoryFilter narrows a repository search. A nil field means "no
// constraint".
type RepositoryFilter struct {
	IsSetup *bool
}

type searchRepositoriesBody struct {
	Cursor  string `json:"cursor,omitempty"`
	IsSetup *bool  `json:"isSetup,omitempty"`
}

type searchRepositoriesResponse struct {
	Repositories []Repository `json:"repositories"`
	Cursor       string       `json:"cursor"`
}

// SearchRepositories retrieves all repositories known to the deployment that
// match the filter, draining every page of the cursor-paginated endpoint.
// The cursor travels in the request body together with the filter.
func (c *Client) SearchRepositories(filter RepositoryFilter) ([]Repository, error) {
	path, err := c.deploymentURL("/repos/search")
	if err != nil {
		return nil, err
	}

	var repos []Repository
	cursor := ""

	c.logger.Info("searching repositories")
	for {
		body := searchRepositoriesBody{
			Cursor:  cursor,
			IsSetup: filter.IsSetup,
		}
		c.logger.Debug("fetching page of repositories", "cursor", cursor)

		resp, err := c.request().SetBody(body).Post(path)
		if err != nil {
			return nil, fmt.Errorf("error searching repositories: %w", err)
		}

		var page searchRepositoriesResponse
		if err := unmarshalResponse(resp, &page); err != nil {
			return nil, err
		}

		repos = append(repos, page.Repositories...)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	c.logger.Debug("successfully fetched all repositories", "totalRepositories", len(repos))
	return repos, nil
}

// BulkUpdateSettings describes the settings applied to every repository in a
// bulk update. Nil fields are omitted from the request.
type BulkUpdateSettings struct {
	DiffScan *bool
	FullScan *bool
	Tags     []string
}

type bulkUpdateBody struct {
	IDs      []string `json:"ids"`
	DiffScan *bool    `json:"diffScan,omitempty"`
	FullScan *bool    `json:"fullScan,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type bulkUpdateResponse struct {
	UpdatedNames []string `json:"updatedNames"`
}

// BulkUpdateRepositories applies the settings to every repository in ids in
// one mutation call and returns the names the API reports as updated.
func (c *Client) BulkUpdateRepositories(ids []string, settings BulkUpdateSettings) ([]string, error) {
	path, err := c.deploymentURL("/repos/bulk_update")
	if err != nil {
		return nil, err
	}

	body := bulkUpdateBody{
		IDs:      ids,
		DiffScan: settings.DiffScan,
		FullScan: settings.FullScan,
		Tags:     settings.Tags,
	}

	resp, err := c.request().SetBody(body).Post(path)
	if err != nil {
		return nil, fmt.Errorf("error bulk-updating %d repositories: %w", len(ids), err)
	}

	var result bulkUpdateResponse
	if err := unmarshalResponse(resp, &result); err != nil {
		return nil, err
	}
	return result.UpdatedNames, nil
}
