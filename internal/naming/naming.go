// Package naming derives release tags and canonical asset filenames.
package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lower       = cases.Lower(language.Und)
	nonSlugChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// Tag returns the release tag for one version of an item: the slug of the
// first three words of its name, its uid and its version.
func Tag(uid, name, version string) string {
	words := strings.Fields(lower.String(name))
	if len(words) > 3 {
		words = words[:3]
	}
	slug := nonSlugChar.ReplaceAllString(strings.Join(words, "-"), "")
	return slug + "-" + uid + "-v" + version
}

// Canonicalize strips a trailing "-<modID>" run (optionally followed by
// "-<n>" segments) from name and appends "-v<version>". A name that is
// nothing but the id becomes "modfile-<modID>".
func Canonicalize(name string, modID int, version string) string {
	suffix := regexp.MustCompile(fmt.Sprintf(`(?:^|-)%d(?:-\d+)*$`, modID))
	cleaned := strings.TrimSpace(suffix.ReplaceAllString(name, ""))
	if cleaned == "" {
		cleaned = fmt.Sprintf("modfile-%d", modID)
	}
	return cleaned + "-v" + version
}

// CanonicalFilename applies Canonicalize to the part of filename before its
// extension.
func CanonicalFilename(filename string, modID int, version string) string {
	ext := filepath.Ext(filename)
	return Canonicalize(strings.TrimSuffix(filename, ext), modID, version) + ext
}
