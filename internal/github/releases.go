package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

const releasesPerPage = 100

// Release represents a GitHub Release.
type Release struct {
	ID        int64     `json:"id"`
	TagName   string    `json:"tag_name"`
	Name      string    `json:"name"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ListReleaseTags returns the tag of every release in the repository,
// following pagination to the end.
func (c *Client) ListReleaseTags(ctx context.Context, owner, repo string) ([]string, error) {
	var tags []string
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s?per_page=%d&page=%d", c.url("repos", owner, repo, "releases"), releasesPerPage, page)
		var batch []Release
		if err := c.doJSON(ctx, http.MethodGet, url, nil, &batch); err != nil {
			return nil, fmt.Errorf("list releases of %s/%s: %w", owner, repo, err)
		}
		for _, r := range batch {
			tags = append(tags, r.TagName)
		}
		if len(batch) < releasesPerPage {
			return tags, nil
		}
	}
}

// CreateRelease publishes a release for tag on the default branch.
// It is attempted once: a timed-out create may already have succeeded.
func (c *Client) CreateRelease(ctx context.Context, owner, repo, tag, name, body string) (*Release, error) {
	url := c.url("repos", owner, repo, "releases")
	payload := map[string]any{
		"tag_name":               tag,
		"name":                   name,
		"body":                   body,
		"draft":                  false,
		"prerelease":             false,
		"generate_release_notes": false,
	}
	var r Release
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &r, httpclient.WithMaxAttempts(1)); err != nil {
		return nil, fmt.Errorf("create release %q: %w", tag, err)
	}
	return &r, nil
}
