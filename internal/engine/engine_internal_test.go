package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/modmirror/internal/catalog"
	"github.com/blackwell-systems/modmirror/internal/diff"
	"github.com/blackwell-systems/modmirror/internal/github"
	"github.com/blackwell-systems/modmirror/internal/model"
	"github.com/blackwell-systems/modmirror/internal/naming"
	"github.com/blackwell-systems/modmirror/internal/nexus"
	"github.com/blackwell-systems/modmirror/internal/release"
)

type fakeFetcher struct {
	items []model.Item
	err   error
}

func (f *fakeFetcher) FetchCatalog(context.Context) (*nexus.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &nexus.Catalog{Total: len(f.items), Items: f.items}, nil
}

type fakeTags struct {
	tags    []string
	err     error
	infoErr error
	listed  bool
}

func (f *fakeTags) Info(context.Context) (*github.Repo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &github.Repo{FullName: "octo/mirror", DefaultBranch: "main"}, nil
}

func (f *fakeTags) ReleaseTags(context.Context) ([]string, error) {
	f.listed = true
	return f.tags, f.err
}

// oneVersionDiffer reports version "1.0" missing for every item whose tag is absent.
type oneVersionDiffer struct{}

func (oneVersionDiffer) ComputeMissing(_ context.Context, items []model.Item, existing diff.TagSet) (diff.Result, error) {
	res := diff.Result{Items: map[string]model.ItemWork{}}
	for _, it := range items {
		if existing.Has(naming.Tag(it.UID, it.Name, "1.0")) {
			continue
		}
		res.Order = append(res.Order, it.UID)
		res.Items[it.UID] = model.ItemWork{Item: it, Versions: []model.MissingVersion{{Version: "1.0"}}}
	}
	return res, nil
}

type fakeMaterializer struct {
	state release.State
	calls []string
}

func (f *fakeMaterializer) Materialize(_ context.Context, item model.Item, mv model.MissingVersion) release.Outcome {
	f.calls = append(f.calls, item.UID)
	tag := naming.Tag(item.UID, item.Name, mv.Version)
	out := release.Outcome{UID: item.UID, Version: mv.Version, Tag: tag, State: f.state}
	if f.state == release.Uploaded {
		out.Record = &catalog.Release{Version: mv.Version, ReleaseTag: tag}
	}
	return out
}

type memStore struct {
	loaded catalog.Catalog
	saved  catalog.Catalog
	saves  int
}

func (s *memStore) Load(context.Context) (catalog.Catalog, error) {
	if s.loaded == nil {
		return catalog.Catalog{}, nil
	}
	return s.loaded, nil
}

func (s *memStore) Save(_ context.Context, c catalog.Catalog) error {
	s.saved = c
	s.saves++
	return nil
}

func (s *memStore) String() string { return "memory" }

func items(n int) []model.Item {
	var out []model.Item
	for i := 1; i <= n; i++ {
		out = append(out, model.Item{UID: fmt.Sprintf("u%d", i), ModID: i, Name: fmt.Sprintf("Mod %d", i), Domain: "d"})
	}
	return out
}

func newEngine(f *fakeFetcher, tags *fakeTags, m *fakeMaterializer, store *memStore, opts Options) *Engine {
	e := New(f, tags, oneVersionDiffer{}, m, store, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.newRunID = func() string { return "run-1" }
	return e
}

func TestRun_CapEnforced(t *testing.T) {
	m := &fakeMaterializer{state: release.Uploaded}
	store := &memStore{}
	e := newEngine(&fakeFetcher{items: items(5)}, &fakeTags{}, m, store, Options{Cap: 3})

	rep, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, "octo/mirror", rep.Repository)
	assert.Equal(t, []string{"u1", "u2", "u3"}, m.calls)
	assert.Equal(t, 3, rep.Processed())
	assert.Equal(t, []string{"u4", "u5"}, rep.Deferred)
	assert.Equal(t, 5, rep.ItemsWithWork)
	assert.Equal(t, 3, rep.Uploaded)

	assert.True(t, rep.Saved)
	assert.Len(t, store.saved, 3)
	assert.NotContains(t, store.saved, "u4", "deferred items leave no marker")
}

func TestRun_NoCap(t *testing.T) {
	m := &fakeMaterializer{state: release.Uploaded}
	e := newEngine(&fakeFetcher{items: items(4)}, &fakeTags{}, m, &memStore{}, Options{})

	rep, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, m.calls, 4)
	assert.Empty(t, rep.Deferred)
}

func TestRun_NoSaveWithoutSuccess(t *testing.T) {
	for _, st := range []release.State{release.Skipped, release.Failed} {
		t.Run(st.String(), func(t *testing.T) {
			store := &memStore{}
			e := newEngine(&fakeFetcher{items: items(2)}, &fakeTags{}, &fakeMaterializer{state: st}, store, Options{Cap: 30})

			rep, err := e.Run(context.Background())
			require.NoError(t, err)
			assert.False(t, rep.Saved)
			assert.Equal(t, 0, store.saves)
			assert.Equal(t, 2, rep.Skipped+rep.Failed)
		})
	}
}

func TestRun_ExistingTagsSkipped(t *testing.T) {
	all := items(2)
	m := &fakeMaterializer{state: release.Uploaded}
	tags := &fakeTags{tags: []string{naming.Tag("u1", "Mod 1", "1.0")}}
	e := newEngine(&fakeFetcher{items: all}, tags, m, &memStore{}, Options{Cap: 30})

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, m.calls)
}

func TestRun_MergesAndSorts(t *testing.T) {
	store := &memStore{loaded: catalog.Catalog{
		"u1": {ID: "u1", Releases: []catalog.Release{{Version: "0.9", ReleaseTag: "old"}}},
	}}
	e := newEngine(&fakeFetcher{items: items(1)}, &fakeTags{}, &fakeMaterializer{state: release.Uploaded}, store, Options{Cap: 30})

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, store.saved, "u1")
	rels := store.saved["u1"].Releases
	require.Len(t, rels, 2)
	assert.Equal(t, "1.0", rels[0].Version)
	assert.Equal(t, "0.9", rels[1].Version)
}

func TestRun_DryRun(t *testing.T) {
	m := &fakeMaterializer{state: release.Uploaded}
	store := &memStore{}
	e := newEngine(&fakeFetcher{items: items(3)}, &fakeTags{}, m, store, Options{Cap: 2, DryRun: true})

	rep, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m.calls)
	assert.Equal(t, 0, store.saves)
	require.Len(t, rep.Plan, 2)
	assert.Equal(t, "u1", rep.Plan[0].Item.UID)
	assert.Equal(t, []string{"u3"}, rep.Deferred)
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("release listing", func(t *testing.T) {
		m := &fakeMaterializer{}
		e := newEngine(&fakeFetcher{items: items(1)}, &fakeTags{err: errors.New("401")}, m, &memStore{}, Options{})
		rep, err := e.Run(context.Background())
		require.Error(t, err)
		require.NotNil(t, rep)
		assert.Empty(t, m.calls)
	})

	t.Run("repository lookup", func(t *testing.T) {
		m := &fakeMaterializer{}
		tags := &fakeTags{infoErr: github.ErrNotFound}
		store := &memStore{}
		e := newEngine(&fakeFetcher{items: items(1)}, tags, m, store, Options{})
		rep, err := e.Run(context.Background())
		assert.ErrorIs(t, err, github.ErrNotFound)
		require.NotNil(t, rep)
		assert.Empty(t, rep.Repository)
		assert.False(t, tags.listed, "releases not listed")
		assert.Empty(t, m.calls)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("catalog fetch", func(t *testing.T) {
		m := &fakeMaterializer{}
		store := &memStore{}
		e := newEngine(&fakeFetcher{err: nexus.ErrGraphQL}, &fakeTags{}, m, store, Options{})
		_, err := e.Run(context.Background())
		assert.ErrorIs(t, err, nexus.ErrGraphQL)
		assert.Empty(t, m.calls)
		assert.Equal(t, 0, store.saves)
	})
}

func TestRun_CancelledStillSaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &cancellingMaterializer{cancel: cancel}
	store := &memStore{}
	e := New(&fakeFetcher{items: items(3)}, &fakeTags{}, oneVersionDiffer{}, m, store, Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rep, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.calls)
	assert.True(t, rep.Saved)
	assert.Len(t, store.saved, 1)
}

// cancellingMaterializer uploads one version and then cancels the run.
type cancellingMaterializer struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancellingMaterializer) Materialize(_ context.Context, item model.Item, mv model.MissingVersion) release.Outcome {
	c.calls++
	c.cancel()
	tag := naming.Tag(item.UID, item.Name, mv.Version)
	return release.Outcome{UID: item.UID, Tag: tag, State: release.Uploaded, Record: &catalog.Release{Version: mv.Version, ReleaseTag: tag}}
}
