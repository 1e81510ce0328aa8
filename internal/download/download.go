// Package download fetches release assets into a staging directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultReadTimeout    = 120 * time.Second
)

// ErrReadTimeout is returned when a transfer stalls longer than the read
// timeout.
var ErrReadTimeout = errors.New("download stalled")

// Job is one file to fetch.
type Job struct {
	URL       string
	Name      string
	Category  string
	Thumbnail bool
}

// Result is the outcome of one Job. Path is set iff Err is nil.
type Result struct {
	Job  Job
	Path string
	Size int64
	Err  error
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Options configures a Downloader. Zero values fall back to defaults.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Transport      http.RoundTripper
}

// Downloader streams files into a Staging area.
type Downloader struct {
	staging     *Staging
	client      *http.Client
	readTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Downloader writing into staging.
func New(staging *Staging, opts Options, logger *slog.Logger) *Downloader {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.Transport == nil {
		opts.Transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext,
			TLSHandshakeTimeout:   opts.ConnectTimeout,
			ResponseHeaderTimeout: opts.ReadTimeout,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		staging:     staging,
		client:      &http.Client{Transport: opts.Transport},
		readTimeout: opts.ReadTimeout,
		logger:      logger,
	}
}

// Run fetches jobs on at most workers goroutines. Results come back in job
// order; one job failing never affects the others.
func (d *Downloader) Run(ctx context.Context, jobs []Job, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))
	p := pool.New().WithMaxGoroutines(workers)
	for i, job := range jobs {
		i, job := i, job
		p.Go(func() {
			results[i] = d.Fetch(ctx, job)
		})
	}
	p.Wait()
	return results
}

// Fetch downloads a single job.
func (d *Downloader) Fetch(ctx context.Context, job Job) Result {
	d.logger.Info("downloading", "file", job.Name)
	path, n, err := d.fetch(ctx, job)
	if err != nil {
		d.logger.Error("download failed", "file", job.Name, "error", err)
		return Result{Job: job, Err: err}
	}
	d.logger.Debug("downloaded", "file", job.Name, "bytes", n)
	return Result{Job: job, Path: path, Size: n}
}

func (d *Downloader) fetch(ctx context.Context, job Job) (string, int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, &httpclient.StatusError{Method: http.MethodGet, URL: job.URL, StatusCode: resp.StatusCode, Body: body}
	}

	body := newIdleReader(resp.Body, d.readTimeout, cancel)
	defer body.stop()
	path, n, err := d.staging.Store(job.Name, body)
	if err != nil && body.expired() {
		return "", 0, fmt.Errorf("%w: no data for %s", ErrReadTimeout, d.readTimeout)
	}
	return path, n, err
}

// idleReader cancels the transfer when no Read completes within timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	fired   atomic.Bool
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.fired.Store(true)
		cancel()
	})
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

func (ir *idleReader) stop()         { ir.timer.Stop() }
func (ir *idleReader) expired() bool { return ir.fired.Load() }
