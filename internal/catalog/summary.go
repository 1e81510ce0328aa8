package catalog

import (
	"slices"
	"strings"
)

// Summary is the per-item line shown by the status command.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Game     string `json:"game"`
	Releases int    `json:"releases"`
	Latest   string `json:"latest,omitempty"`
}

// Summaries lists one Summary per entry, ordered by name. Latest assumes
// releases are sorted.
func (c Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c))
	for _, e := range c {
		s := Summary{ID: e.ID, Name: e.Name, Game: e.Game, Releases: len(e.Releases)}
		if len(e.Releases) > 0 {
			s.Latest = e.Releases[0].Version
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Summary) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
