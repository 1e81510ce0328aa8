package release

import (
	"strings"

	"github.com/blackwell-systems/modmirror/internal/bbcode"
)

// RenderChangelog renders a version's changelog entries as a collapsed
// Markdown block. No entries renders nothing.
func RenderChangelog(version string, entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = "- " + e
	}
	return "<details>\n<summary>Click to view Changelog for v" + version + "</summary>\n\n" +
		strings.Join(items, "\n") + "\n</details>"
}

// Body builds a release description from the item's raw markup and an
// optional rendered changelog.
func Body(rawDescription, changelog string) string {
	body := bbcode.Normalize(rawDescription)
	if changelog != "" {
		body += "\n\n---\n\n" + changelog
	}
	return body
}

// Title is the release title for an item version.
func Title(name, version string) string {
	return name + " - v" + version
}
