package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

const defaultAPIBase = "https://api.github.com"

// Client is an authenticated GitHub API client.
type Client struct {
	token      string
	apiBase    string
	uploadBase string
	api        *httpclient.Client
	upload     *http.Client
}

// New creates a Client with the given token and API base URL.
// If apiBase is empty, the public GitHub API is used. JSON calls go through
// hc; asset uploads stream on a separate client so a body is never replayed.
func New(token, apiBase string, hc *httpclient.Client) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	// Strip trailing slash for consistent URL building.
	apiBase = strings.TrimRight(apiBase, "/")

	// Upload endpoint is on uploads.github.com, not api.github.com.
	// Enterprise or test servers keep the same host.
	uploadBase := strings.Replace(apiBase, "api.github.com", "uploads.github.com", 1)

	return &Client{
		token:      token,
		apiBase:    apiBase,
		uploadBase: uploadBase,
		api:        hc,
		upload:     &http.Client{Timeout: 5 * time.Minute}, // generous for large uploads
	}
}

func (c *Client) headers(opts []httpclient.Option) []httpclient.Option {
	return append([]httpclient.Option{
		httpclient.WithHeader("Authorization", "Bearer "+c.token),
		httpclient.WithHeader("Accept", "application/vnd.github+json"),
		httpclient.WithHeader("X-GitHub-Api-Version", "2022-11-28"),
	}, opts...)
}

// do executes the request with standard GitHub headers.
func (c *Client) do(ctx context.Context, method, url string, opts ...httpclient.Option) (*httpclient.Response, error) {
	resp, err := c.api.Do(ctx, method, url, c.headers(opts)...)
	if err != nil {
		return nil, checkStatus(err)
	}
	return resp, nil
}

// doJSON sends body (if any) as JSON and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any, opts ...httpclient.Option) error {
	if body != nil {
		opts = append(opts, httpclient.WithJSON(body))
	}
	resp, err := c.do(ctx, method, url, opts...)
	if err != nil {
		return err
	}
	if out != nil {
		return resp.JSON(out)
	}
	return nil
}

// url builds an API URL from path segments.
func (c *Client) url(parts ...string) string {
	return c.apiBase + "/" + strings.Join(parts, "/")
}

// checkStatus maps well-known statuses onto typed errors. The
// *httpclient.StatusError stays in the chain.
func checkStatus(err error) error {
	var sentinel error
	switch httpclient.StatusCode(err) {
	case 0:
		return err
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusUnprocessableEntity:
		sentinel = ErrValidation
	default:
		return fmt.Errorf("github API error: %w", err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// statusFromResponse builds the error for a non-2xx streamed response.
func statusFromResponse(method, url string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return checkStatus(&httpclient.StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: body})
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
