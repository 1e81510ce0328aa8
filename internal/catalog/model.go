// Package catalog persists the mirror's record of every release it has
// created, keyed by item uid.
package catalog

// Catalog maps an item uid to its entry.
type Catalog map[string]*Entry

// Entry is one mirrored item and the releases created for it.
type Entry struct {
	ID          string    `json:"id"`
	ModID       int       `json:"modId"`
	Name        string    `json:"name"`
	Game        string    `json:"game"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	PictureURL  string    `json:"pictureUrl"`
	Releases    []Release `json:"releases"`
}

// Release is one created release.
type Release struct {
	Version    string `json:"version"`
	ReleaseTag string `json:"releaseTag"`
	// UpdatedAt is when the release was created on the target (RFC 3339).
	UpdatedAt string `json:"updatedAt"`
	// UploadTimestamp is the newest source upload time of the version's files.
	UploadTimestamp int64   `json:"uploadTimestamp"`
	Changelog       string  `json:"changelog"`
	Assets          []Asset `json:"assets"`
}

// Asset is one uploaded file of a release.
type Asset struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}
