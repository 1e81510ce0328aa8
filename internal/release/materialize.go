// Package release turns one missing version into a published release.
package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/modmirror/internal/catalog"
	"github.com/blackwell-systems/modmirror/internal/download"
	"github.com/blackwell-systems/modmirror/internal/github"
	"github.com/blackwell-systems/modmirror/internal/httpclient"
	"github.com/blackwell-systems/modmirror/internal/model"
	"github.com/blackwell-systems/modmirror/internal/naming"
)

const (
	thumbnailCategory = "THUMBNAIL"
	unknownCategory   = "UNKNOWN"
)

// Source supplies changelogs and download links.
type Source interface {
	Changelogs(ctx context.Context, domain string, modID int) (map[string][]string, error)
	DownloadLink(ctx context.Context, domain string, modID, fileID int) (string, error)
}

// Target is where releases are published.
type Target interface {
	CreateRelease(ctx context.Context, tag, title, body string) (*github.Release, error)
	UploadAsset(ctx context.Context, releaseID int64, name string, r io.Reader, size int64, contentType string) (*github.Asset, error)
}

// Fetcher downloads a batch of jobs.
type Fetcher interface {
	Run(ctx context.Context, jobs []download.Job, workers int) []download.Result
}

// Staging is the per-group scratch area.
type Staging interface {
	Reset() error
	Remove() error
	Rename(path, newName string) (string, error)
}

// Options tunes a Materializer.
type Options struct {
	Workers            int
	Pacing             time.Duration
	ExcludedCategories []string
}

// Materializer publishes missing versions one at a time.
type Materializer struct {
	source   Source
	target   Target
	fetcher  Fetcher
	staging  Staging
	workers  int
	pacing   time.Duration
	excluded map[string]bool
	logger   *slog.Logger
	sleep    func(context.Context, time.Duration) error
	now      func() time.Time
}

// New creates a Materializer.
func New(source Source, target Target, fetcher Fetcher, staging Staging, opts Options, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	excluded := make(map[string]bool, len(opts.ExcludedCategories))
	for _, c := range opts.ExcludedCategories {
		excluded[c] = true
	}
	return &Materializer{
		source:   source,
		target:   target,
		fetcher:  fetcher,
		staging:  staging,
		workers:  opts.Workers,
		pacing:   opts.Pacing,
		excluded: excluded,
		logger:   logger,
		sleep:    httpclient.Sleep,
		now:      time.Now,
	}
}

type stagedAsset struct {
	path     string
	category string
}

// Materialize runs one version group through changelog lookup, downloads,
// release creation and asset upload. It never returns an error: failures
// are reported in the Outcome. The staging area is emptied before and
// removed after the group whatever happens.
func (m *Materializer) Materialize(ctx context.Context, item model.Item, mv model.MissingVersion) (out Outcome) {
	out = Outcome{
		UID:     item.UID,
		Name:    item.Name,
		Version: mv.Version,
		Tag:     naming.Tag(item.UID, item.Name, mv.Version),
		State:   Queued,
	}
	log := m.logger.With("tag", out.Tag)
	log.Info("processing", "name", item.Name, "version", mv.Version)

	if err := m.staging.Reset(); err != nil {
		out.State, out.Err = Failed, err
		log.Error("preparing staging area failed", "error", err)
		return out
	}
	defer func() {
		if err := m.staging.Remove(); err != nil {
			log.Warn("removing staging area failed", "error", err)
		}
	}()

	changelog := m.changelog(ctx, log, item, mv.Version)
	out.State = ChangelogFetched
	if err := ctx.Err(); err != nil {
		out.State, out.Err = Failed, err
		log.Warn("interrupted before downloads", "error", err)
		return out
	}

	jobs := m.jobs(ctx, log, item, mv)
	results := m.fetcher.Run(ctx, jobs, m.workers)
	out.State = DownloadsAttempted

	assets := m.accept(log, item, mv.Version, results, &out)
	if len(assets) == 0 {
		out.State = Skipped
		log.Warn("no files downloaded, nothing to release")
		return out
	}

	rec, err := m.publish(ctx, log, item, mv, changelog, assets)
	if err != nil {
		out.State, out.Err = Failed, err
		log.Error("creating release failed", "error", err)
		return out
	}
	out.State, out.Record = Uploaded, rec
	log.Info("release created", "assets", len(rec.Assets))
	return out
}

func (m *Materializer) changelog(ctx context.Context, log *slog.Logger, item model.Item, version string) string {
	logs, err := m.source.Changelogs(ctx, item.Domain, item.ModID)
	if err != nil {
		log.Warn("could not retrieve changelogs", "error", err)
		return ""
	}
	if err := m.sleep(ctx, m.pacing); err != nil {
		return ""
	}

	entries := logs[version]
	if len(entries) == 0 {
		log.Debug("no changelog for this version")
		return ""
	}
	return RenderChangelog(version, entries)
}

// jobs builds the download list: the thumbnail if the item has a picture,
// then one job per eligible file whose link resolved.
func (m *Materializer) jobs(ctx context.Context, log *slog.Logger, item model.Item, mv model.MissingVersion) []download.Job {
	var jobs []download.Job
	if item.PictureURL != "" {
		jobs = append(jobs, download.Job{
			URL:       item.PictureURL,
			Name:      "thumbnail" + pictureExt(item.PictureURL),
			Category:  thumbnailCategory,
			Thumbnail: true,
		})
	}

	for _, f := range mv.Files {
		if m.excluded[f.CategoryName] {
			log.Info("skipping file", "file", f.FileName, "category", f.CategoryName)
			continue
		}
		uri, err := m.source.DownloadLink(ctx, item.Domain, item.ModID, f.FileID)
		if err != nil {
			log.Error("getting download link failed", "file", f.FileName, "error", err)
			continue
		}
		category := f.CategoryName
		if category == "" {
			category = unknownCategory
		}
		jobs = append(jobs, download.Job{URL: uri, Name: f.FileName, Category: category})
		if err := m.sleep(ctx, m.pacing); err != nil {
			break
		}
	}
	return jobs
}

// accept keeps the successful non-thumbnail downloads in job order,
// renamed to their canonical names. Asset names are unique within a
// release: a file whose canonical name is taken keeps its original name,
// and one whose original name is taken too is dropped.
func (m *Materializer) accept(log *slog.Logger, item model.Item, version string, results []download.Result, out *Outcome) []stagedAsset {
	var assets []stagedAsset
	taken := make(map[string]bool, len(results))
	for _, r := range results {
		if !r.OK() {
			out.FailedJobs++
			continue
		}
		if r.Job.Thumbnail {
			continue
		}

		p := r.Path
		canonical := naming.CanonicalFilename(filepath.Base(p), item.ModID, version)
		if taken[canonical] {
			log.Warn("keeping original file name", "file", filepath.Base(p), "taken", canonical)
		} else if renamed, err := m.staging.Rename(p, canonical); err != nil {
			log.Warn("keeping original file name", "file", filepath.Base(p), "error", err)
		} else {
			p = renamed
		}
		name := filepath.Base(p)
		if taken[name] {
			out.FailedJobs++
			log.Error("dropping file with duplicate asset name", "file", name)
			continue
		}
		taken[name] = true
		out.Downloaded++
		assets = append(assets, stagedAsset{path: p, category: r.Job.Category})
	}
	return assets
}

func (m *Materializer) publish(ctx context.Context, log *slog.Logger, item model.Item, mv model.MissingVersion, changelog string, assets []stagedAsset) (*catalog.Release, error) {
	tag := naming.Tag(item.UID, item.Name, mv.Version)
	rel, err := m.target.CreateRelease(ctx, tag, Title(item.Name, mv.Version), Body(item.RawDescription(), changelog))
	if err != nil {
		return nil, err
	}

	created := rel.CreatedAt
	if created.IsZero() {
		created = m.now()
	}
	rec := &catalog.Release{
		Version:         mv.Version,
		ReleaseTag:      tag,
		UpdatedAt:       created.UTC().Format(time.RFC3339),
		UploadTimestamp: mv.LatestUploadTimestamp,
		Changelog:       changelog,
		Assets:          make([]catalog.Asset, 0, len(assets)),
	}
	for _, a := range assets {
		log.Info("uploading", "file", filepath.Base(a.path))
		uploaded, err := m.upload(ctx, rel.ID, a.path)
		if err != nil {
			return nil, err
		}
		rec.Assets = append(rec.Assets, catalog.Asset{
			Name:     uploaded.Name,
			URL:      uploaded.BrowserDownloadURL,
			Category: a.category,
		})
	}
	return rec, nil
}

func (m *Materializer) upload(ctx context.Context, releaseID int64, p string) (*github.Asset, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	a, err := m.target.UploadAsset(ctx, releaseID, filepath.Base(p), f, info.Size(), "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(p), err)
	}
	return a, nil
}

// pictureExt is the extension of the picture URL's path, ".jpg" if none.
func pictureExt(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if ext := path.Ext(p); ext != "" {
		return ext
	}
	return ".jpg"
}
