package tui

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/modmirror/internal/util"
)

// ShouldUseTUI reports whether cmd may draw interactive output: stdout is
// a terminal, --no-interactive is unset and no machine-readable output
// (--json) was requested.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsTTY() {
		return false
	}
	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return false
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return false
	}
	return true
}
