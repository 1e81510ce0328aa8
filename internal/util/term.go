// Package util holds terminal helpers shared by the CLI and its views.
package util

import (
	"os"

	"github.com/fatih/color"
)

// IsTerminal reports whether f is attached to a character device.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool { return IsTerminal(os.Stdout) }

// InitColor disables fatih/color output when --no-color is set or stdout
// is not a terminal.
func InitColor(noColor bool) {
	if noColor || !IsTTY() {
		color.NoColor = true
	}
}

// LogColor reports whether log lines written to stderr should be colored.
func LogColor(noColor bool) bool {
	return !noColor && IsTerminal(os.Stderr)
}
