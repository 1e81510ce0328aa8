// Package diff works out which item versions have no release yet.
package diff

import (
	"context"
	"log/slog"
	"time"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
	"github.com/blackwell-systems/modmirror/internal/model"
	"github.com/blackwell-systems/modmirror/internal/naming"
)

// FileLister fetches the files uploaded for one item.
type FileLister interface {
	ListFiles(ctx context.Context, domain string, modID int) ([]model.FileRecord, error)
}

// TagSet is the set of release tags already present on the target.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from a list of tags.
func NewTagSet(tags []string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

func (s TagSet) Add(tag string) { s[tag] = struct{}{} }

// Result holds the items that still have versions to release, keyed by
// uid. Order keeps the catalog order of those uids.
type Result struct {
	Order []string
	Items map[string]model.ItemWork
}

// NewVersions counts the missing versions across all items.
func (r Result) NewVersions() int {
	n := 0
	for _, w := range r.Items {
		n += len(w.Versions)
	}
	return n
}

// Engine computes missing versions.
type Engine struct {
	files  FileLister
	pacing time.Duration
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// New creates an Engine that waits pacing after every successful file
// list fetch.
func New(files FileLister, pacing time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{files: files, pacing: pacing, logger: logger, sleep: httpclient.Sleep}
}

// ComputeMissing returns, for every item, the version groups whose tag is
// not in existing. Items without an identity or whose file list cannot be
// fetched contribute nothing. Only a cancelled ctx is returned as an error.
func (e *Engine) ComputeMissing(ctx context.Context, items []model.Item, existing TagSet) (Result, error) {
	res := Result{Items: map[string]model.ItemWork{}}
	for _, item := range items {
		if _, err := model.NewItem(item.UID, item.ModID, item.Domain); err != nil {
			e.logger.Debug("skipping item", "error", err)
			continue
		}
		if _, dup := res.Items[item.UID]; dup {
			continue
		}

		files, err := e.files.ListFiles(ctx, item.Domain, item.ModID)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			e.logger.Error("checking versions failed", "uid", item.UID, "mod_id", item.ModID, "error", err)
			continue
		}

		var missing []model.MissingVersion
		for _, g := range model.GroupByVersion(files) {
			if !existing.Has(naming.Tag(item.UID, item.Name, g.Version)) {
				missing = append(missing, g)
			}
		}
		if len(missing) > 0 {
			res.Order = append(res.Order, item.UID)
			res.Items[item.UID] = model.ItemWork{Item: item, Versions: missing}
			e.logger.Info("missing versions", "uid", item.UID, "name", item.Name, "count", len(missing))
		}

		if err := e.sleep(ctx, e.pacing); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
