package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/blackwell-systems/modmirror/internal/bbcode"
	"github.com/blackwell-systems/modmirror/internal/model"
)

// Marshal encodes a catalog as 2-space indented JSON.
func Marshal(c Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the catalog to path. The file is replaced atomically.
func Save(path string, c Catalog) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// Record appends rel to the item's entry, creating the entry the first
// time the item gets a release.
func (c Catalog) Record(item model.Item, rel Release) {
	e, ok := c[item.UID]
	if !ok {
		e = &Entry{
			ID:          item.UID,
			ModID:       item.ModID,
			Name:        item.Name,
			Game:        item.Domain,
			Summary:     item.Summary,
			Description: bbcode.Normalize(item.RawDescription()),
			PictureURL:  item.PictureURL,
			Releases:    []Release{},
		}
		c[item.UID] = e
	}
	e.Releases = append(e.Releases, rel)
}

// Tags returns every recorded release tag.
func (c Catalog) Tags() []string {
	var tags []string
	for _, e := range c {
		for _, r := range e.Releases {
			tags = append(tags, r.ReleaseTag)
		}
	}
	return tags
}

// SortReleases orders every entry's releases newest first: by version,
// then by upload timestamp. Versions that don't parse sort after all
// parseable ones.
func (c Catalog) SortReleases() {
	for _, e := range c {
		slices.SortStableFunc(e.Releases, func(a, b Release) int {
			return -compareReleases(a, b)
		})
	}
}

func compareReleases(a, b Release) int {
	if c := compareVersions(a.Version, b.Version); c != 0 {
		return c
	}
	switch {
	case a.UploadTimestamp < b.UploadTimestamp:
		return -1
	case a.UploadTimestamp > b.UploadTimestamp:
		return 1
	}
	return 0
}

func compareVersions(a, b string) int {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}
	return strings.Compare(a, b)
}
