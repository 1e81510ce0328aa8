// Package engine runs one synchronization pass: read the target's
// releases, diff the source catalog against them, publish what is missing
// and persist the result.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blackwell-systems/modmirror/internal/catalog"
	"github.com/blackwell-systems/modmirror/internal/diff"
	"github.com/blackwell-systems/modmirror/internal/github"
	"github.com/blackwell-systems/modmirror/internal/model"
	"github.com/blackwell-systems/modmirror/internal/nexus"
	"github.com/blackwell-systems/modmirror/internal/release"
)

// CatalogFetcher lists the publisher's items.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (*nexus.Catalog, error)
}

// Target is the repository releases are published to.
type Target interface {
	Info(ctx context.Context) (*github.Repo, error)
	ReleaseTags(ctx context.Context) ([]string, error)
}

// Differ finds the versions that have no release yet.
type Differ interface {
	ComputeMissing(ctx context.Context, items []model.Item, existing diff.TagSet) (diff.Result, error)
}

// Materializer publishes one missing version.
type Materializer interface {
	Materialize(ctx context.Context, item model.Item, mv model.MissingVersion) release.Outcome
}

// Options is the immutable configuration of a run.
type Options struct {
	// Cap is the most items processed per run; 0 means no limit.
	Cap    int
	DryRun bool
}

// Engine wires the stages of a run together.
type Engine struct {
	fetcher      CatalogFetcher
	target       Target
	differ       Differ
	materializer Materializer
	store        catalog.Store
	opts         Options
	logger       *slog.Logger
	newRunID     func() string
}

// New creates an Engine.
func New(fetcher CatalogFetcher, target Target, differ Differ, materializer Materializer, store catalog.Store, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher:      fetcher,
		target:       target,
		differ:       differ,
		materializer: materializer,
		store:        store,
		opts:         opts,
		logger:       logger,
		newRunID:     func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Run performs one pass. The returned Report is non-nil even when an error
// is returned, describing how far the run got.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: e.newRunID(), DryRun: e.opts.DryRun}
	log := e.logger.With("run_id", rep.RunID)

	repo, err := e.target.Info(ctx)
	if err != nil {
		return rep, fmt.Errorf("connecting to target repository: %w", err)
	}
	rep.Repository = repo.FullName
	log.Info("connected to repository", "repo", repo.FullName, "default_branch", repo.DefaultBranch)

	tags, err := e.target.ReleaseTags(ctx)
	if err != nil {
		return rep, fmt.Errorf("listing existing releases: %w", err)
	}
	existing := diff.NewTagSet(tags)
	log.Info("found existing releases", "count", len(existing))

	state, err := e.store.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("loading catalog from %s: %w", e.store, err)
	}
	log.Info("loaded catalog", "entries", len(state), "from", e.store.String())

	cat, err := e.fetcher.FetchCatalog(ctx)
	if err != nil {
		return rep, fmt.Errorf("fetching source catalog: %w", err)
	}
	rep.TotalItems = len(cat.Items)
	rep.DroppedPages = cat.DroppedPages
	log.Info("retrieved source catalog", "items", rep.TotalItems, "dropped_pages", len(cat.DroppedPages))

	res, err := e.differ.ComputeMissing(ctx, cat.Items, existing)
	if err != nil {
		return rep, fmt.Errorf("computing missing versions: %w", err)
	}
	rep.ItemsWithWork = len(res.Order)
	rep.NewVersions = res.NewVersions()
	log.Info("found missing versions", "items", rep.ItemsWithWork, "versions", rep.NewVersions)

	order := res.Order
	if e.opts.Cap > 0 && len(order) > e.opts.Cap {
		rep.Deferred = order[e.opts.Cap:]
		order = order[:e.opts.Cap]
		log.Info("throttling", "processing", len(order), "deferred", len(rep.Deferred))
	}
	for _, uid := range order {
		rep.Plan = append(rep.Plan, res.Items[uid])
	}
	if e.opts.DryRun {
		return rep, nil
	}

	changed := false
	for _, work := range rep.Plan {
		for _, mv := range work.Versions {
			if ctx.Err() != nil {
				break
			}
			out := e.materializer.Materialize(ctx, work.Item, mv)
			rep.Outcomes = append(rep.Outcomes, out)
			switch out.State {
			case release.Uploaded:
				rep.Uploaded++
				state.Record(work.Item, *out.Record)
				existing.Add(out.Tag)
				changed = true
			case release.Skipped:
				rep.Skipped++
			default:
				rep.Failed++
			}
		}
	}

	if changed {
		state.SortReleases()
		// A cancelled run still persists the releases it created.
		if err := e.store.Save(context.WithoutCancel(ctx), state); err != nil {
			return rep, fmt.Errorf("saving catalog to %s: %w", e.store, err)
		}
		rep.Saved = true
		log.Info("saved catalog", "entries", len(state), "to", e.store.String())
	} else {
		log.Info("no new releases, catalog unchanged")
	}
	return rep, ctx.Err()
}
