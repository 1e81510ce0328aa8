package engine

import (
	"github.com/blackwell-systems/modmirror/internal/model"
	"github.com/blackwell-systems/modmirror/internal/release"
)

// Report summarizes a run.
type Report struct {
	RunID  string
	DryRun bool
	// Repository is the target's full name, set once connected.
	Repository string

	TotalItems    int
	DroppedPages  []int
	ItemsWithWork int
	NewVersions   int

	// Plan is the work selected for this run, in catalog order.
	Plan []model.ItemWork
	// Deferred lists the uids left for a later run by the cap.
	Deferred []string

	Uploaded int
	Skipped  int
	Failed   int
	Outcomes []release.Outcome
	Saved    bool
}

// Processed is the number of items selected for this run.
func (r *Report) Processed() int { return len(r.Plan) }
