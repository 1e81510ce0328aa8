package release

import "github.com/blackwell-systems/modmirror/internal/catalog"

// State is where a version group ended up.
type State int

const (
	Queued State = iota
	ChangelogFetched
	DownloadsAttempted
	Uploaded
	Skipped
	Failed
)

var stateNames = [...]string{"queued", "changelog-fetched", "downloads-attempted", "uploaded", "skipped", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Outcome reports what happened to one version group.
type Outcome struct {
	UID     string
	Name    string
	Version string
	Tag     string
	State   State
	// Record is set iff State is Uploaded.
	Record     *catalog.Release
	Err        error
	Downloaded int
	FailedJobs int
}
