package github

import (
	"context"
	"fmt"
	"net/http"
)

// Repo represents a GitHub repository.
type Repo struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	HTMLURL       string `json:"html_url"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// GetRepo fetches repository metadata. Returns ErrNotFound if absent.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	url := c.url("repos", owner, repo)
	var r Repo
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &r); err != nil {
		return nil, fmt.Errorf("get repo %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}
