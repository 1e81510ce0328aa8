package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

// FileContent is the GitHub Contents API response for a file.
type FileContent struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GetFileContent fetches a file's content via the Contents API.
// Returns (content, blobSHA, error). blobSHA is needed for PUT updates.
// For files > 1 MB it falls back to the Git Blobs API.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, string, error) {
	url := c.url("repos", owner, repo, "contents", path)
	if ref != "" {
		url += "?ref=" + ref
	}

	var fc FileContent
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &fc); err != nil {
		return nil, "", err
	}

	if fc.Encoding == "none" && fc.Size > 1*1024*1024 {
		// Too large for the Contents API; fetch raw bytes from the Blobs API.
		data, err := c.getRawBlob(ctx, owner, repo, fc.SHA)
		return data, fc.SHA, err
	}

	// GitHub wraps base64 lines at 60 chars.
	cleaned := strings.ReplaceAll(fc.Content, "\n", "")
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, "", fmt.Errorf("decoding contents: %w", err)
	}
	return data, fc.SHA, nil
}

// getRawBlob downloads a blob by its SHA using the raw accept header.
func (c *Client) getRawBlob(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	url := c.url("repos", owner, repo, "git", "blobs", sha)
	resp, err := c.do(ctx, http.MethodGet, url, httpclient.WithHeader("Accept", "application/vnd.github.raw"))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PutFileContent creates or updates a file through the Contents API and
// returns the new blob SHA. sha must be the current blob SHA when updating
// and empty when creating.
func (c *Client) PutFileContent(ctx context.Context, owner, repo, path string, content []byte, sha, message, branch string) (string, error) {
	url := c.url("repos", owner, repo, "contents", path)
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	if branch != "" {
		payload["branch"] = branch
	}

	var out struct {
		Content FileContent `json:"content"`
	}
	if err := c.doJSON(ctx, http.MethodPut, url, payload, &out, httpclient.WithMaxAttempts(1)); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return out.Content.SHA, nil
}
