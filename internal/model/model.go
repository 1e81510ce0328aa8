package model

import (
	"errors"
	"fmt"
)

// ErrIncomplete is returned by NewItem when an identifying field is absent.
var ErrIncomplete = errors.New("incomplete item")

// Item is one published work in the source registry.
type Item struct {
	UID         string
	ModID       int
	Name        string
	Summary     string
	Description string
	PictureURL  string
	Domain      string
}

// NewItem builds an Item, requiring the fields the mirror keys on.
func NewItem(uid string, modID int, domain string) (Item, error) {
	switch {
	case uid == "":
		return Item{}, fmt.Errorf("%w: missing uid", ErrIncomplete)
	case modID <= 0:
		return Item{}, fmt.Errorf("%w: missing modId for %s", ErrIncomplete, uid)
	case domain == "":
		return Item{}, fmt.Errorf("%w: missing game domain for %s", ErrIncomplete, uid)
	}
	return Item{UID: uid, ModID: modID, Domain: domain}, nil
}

// RawDescription is the markup the release body is rendered from.
func (i Item) RawDescription() string {
	if i.Description != "" {
		return i.Description
	}
	return i.Summary
}

// FileRecord is one uploaded file of an Item.
type FileRecord struct {
	FileID            int
	FileName          string
	Version           string
	CategoryName      string
	UploadedTimestamp int64
}

// VersionGroup is every file of one Item sharing a declared version.
// It is the unit materialized as one release.
type VersionGroup struct {
	Version               string
	Files                 []FileRecord
	LatestUploadTimestamp int64
}

// MissingVersion is a VersionGroup whose release tag is absent from the target.
type MissingVersion = VersionGroup

// ItemWork is an Item together with the versions still to be released.
type ItemWork struct {
	Item     Item
	Versions []MissingVersion
}

// GroupByVersion groups files by declared version, in first-seen order.
// Files without a version are dropped.
func GroupByVersion(files []FileRecord) []VersionGroup {
	index := map[string]int{}
	var groups []VersionGroup
	for _, f := range files {
		if f.Version == "" {
			continue
		}
		i, ok := index[f.Version]
		if !ok {
			i = len(groups)
			index[f.Version] = i
			groups = append(groups, VersionGroup{Version: f.Version})
		}
		g := &groups[i]
		g.Files = append(g.Files, f)
		if f.UploadedTimestamp > g.LatestUploadTimestamp {
			g.LatestUploadTimestamp = f.UploadedTimestamp
		}
	}
	return groups
}
