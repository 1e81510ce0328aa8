package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared with the fatih/color output of the CLI.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
)

var (
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	// StyleTag is for release tags and versions.
	StyleTag = lipgloss.NewStyle().Foreground(ColorCyan)

	StyleOK   = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarn = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleFail = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	// StyleHelp is for secondary text and hints.
	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)
