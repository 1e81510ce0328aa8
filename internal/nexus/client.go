// Package nexus reads the publisher catalog, file lists, changelogs and
// download links from the Nexus Mods API.
package nexus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

const (
	DefaultGraphQLURL = "https://api.nexusmods.com/v2/graphql"
	DefaultAPIBase    = "https://api.nexusmods.com"
	DefaultPageSize   = 50
)

// Config identifies the account and endpoints a Client talks to.
type Config struct {
	APIKey     string
	UploaderID string
	GraphQLURL string
	APIBase    string
	PageSize   int
	Logger     *slog.Logger
}

// Client is an authenticated Nexus Mods API client.
type Client struct {
	http       *httpclient.Client
	apiKey     string
	uploaderID string
	graphqlURL string
	apiBase    string
	pageSize   int
	logger     *slog.Logger
}

// New creates a Client on top of hc. Empty endpoints use the public API.
func New(hc *httpclient.Client, cfg Config) *Client {
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		http:       hc,
		apiKey:     cfg.APIKey,
		uploaderID: cfg.UploaderID,
		graphqlURL: cfg.GraphQLURL,
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		pageSize:   cfg.PageSize,
		logger:     cfg.Logger,
	}
}

// get fetches a v1 endpoint and returns the parsed document.
func (c *Client) get(ctx context.Context, path string) (gjson.Result, error) {
	resp, err := c.http.Do(ctx, http.MethodGet, c.apiBase+path,
		httpclient.WithHeader("apikey", c.apiKey),
		httpclient.WithHeader("Accept", "application/json"))
	if err != nil {
		return gjson.Result{}, classify(err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return gjson.Result{}, fmt.Errorf("GET %s: invalid JSON response", path)
	}
	return gjson.ParseBytes(resp.Body), nil
}
