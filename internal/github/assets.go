package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Asset represents a GitHub Release asset.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
	ContentType        string `json:"content_type"`
}

// UploadAsset uploads a file as a release asset.
// The reader must yield exactly size bytes.
func (c *Client) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, name string, r io.Reader, size int64, contentType string) (*Asset, error) {
	uploadURL := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets?name=%s",
		c.uploadBase, owner, repo, releaseID, url.QueryEscape(name))

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, r)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.upload.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload asset %q: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := statusFromResponse(http.MethodPost, uploadURL, resp); err != nil {
		return nil, fmt.Errorf("upload asset %q: %w", name, err)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("upload asset %q: decoding response: %w", name, err)
	}
	return &asset, nil
}
