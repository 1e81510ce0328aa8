package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"time"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 2 * time.Second
)

// Config holds the retry policy and transport for a Client.
type Config struct {
	// Timeout applies to each attempt unless a call overrides it.
	Timeout time.Duration
	// MaxRetries is the total number of attempts, counted from 1.
	MaxRetries int
	// BackoffFactor is the wait before the second attempt; it doubles after that.
	BackoffFactor time.Duration
	Transport     http.RoundTripper
	Logger        *slog.Logger
}

// Client performs API requests with bounded retry and exponential backoff.
// Only connection failures and timeouts are retried; any HTTP status
// outside 2xx is returned to the caller as a *StatusError.
type Client struct {
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

// New creates a Client. Zero values in cfg fall back to the defaults.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = defaultBackoff
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		http:       &http.Client{Transport: cfg.Transport},
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.BackoffFactor,
		logger:     cfg.Logger,
		sleep:      Sleep,
	}
}

// Response is a completed HTTP exchange with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into out.
func (r *Response) JSON(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type request struct {
	timeout     time.Duration
	header      http.Header
	body        []byte
	maxAttempts int
	err         error
}

// Option customizes a single call.
type Option func(*request)

// WithTimeout overrides the client's default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *request) { r.timeout = d }
}

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(r *request) { r.header.Set(key, value) }
}

// WithBody sends b as the request body with the given content type.
func WithBody(b []byte, contentType string) Option {
	return func(r *request) {
		r.body = b
		r.header.Set("Content-Type", contentType)
	}
}

// WithJSON marshals v as the request body. Marshal failures surface from Do.
func WithJSON(v any) Option {
	return func(r *request) {
		b, err := json.Marshal(v)
		if err != nil {
			r.err = fmt.Errorf("encoding request body: %w", err)
			return
		}
		r.body = b
		r.header.Set("Content-Type", "application/json")
	}
}

// WithMaxAttempts caps the attempts for this call. Non-idempotent calls
// pass 1 so a timed-out request is never replayed.
func WithMaxAttempts(n int) Option {
	return func(r *request) { r.maxAttempts = n }
}

// Do sends the request, retrying transient failures.
// On exhaustion the last transient error is returned, wrapped.
func (c *Client) Do(ctx context.Context, method, url string, opts ...Option) (*Response, error) {
	req := &request{
		timeout:     c.timeout,
		header:      http.Header{},
		maxAttempts: c.maxRetries,
	}
	for _, opt := range opts {
		opt(req)
	}
	if req.err != nil {
		return nil, req.err
	}

	var lastErr error
	for attempt := 1; attempt <= req.maxAttempts; attempt++ {
		resp, err := c.attempt(ctx, method, url, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return nil, err
		}
		lastErr = err
		if attempt == req.maxAttempts {
			break
		}

		wait := c.backoff * time.Duration(1<<(attempt-1))
		c.logger.Warn("request failed, retrying",
			"method", method, "url", url, "error", err,
			"wait", wait, "attempt", attempt, "max", req.maxAttempts)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	c.logger.Error("max retries reached", "method", method, "url", url, "error", lastErr)
	return nil, fmt.Errorf("%s %s: giving up after %d attempts: %w", method, url, req.maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, url string, r *request) (*Response, error) {
	ctx, cancel := context.WithTimeout(traceContext(ctx, c.logger), r.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	c.logger.Debug("HTTP "+method, "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: content}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: content}, nil
}

// traceContext logs whether the request's tcp connection was re-used.
func traceContext(ctx context.Context, logger *slog.Logger) context.Context {
	tracer := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			logger.Debug("HTTP connection reuse", "reused", info.Reused)
		},
	}
	return httptrace.WithClientTrace(ctx, tracer)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
