package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/modmirror/internal/engine"
	"github.com/blackwell-systems/modmirror/internal/naming"
	"github.com/blackwell-systems/modmirror/internal/release"
)

// RenderReport formats a run report as a bordered summary block. Dry runs
// list the planned tags; real runs list every outcome.
func RenderReport(rep *engine.Report) string {
	var b strings.Builder

	title := "Run " + rep.RunID
	if rep.DryRun {
		title += " (dry run)"
	}
	b.WriteString(StyleHeader.Render(title) + "\n\n")

	rows := [][2]string{
		{"Items in catalog", fmt.Sprint(rep.TotalItems)},
		{"Items with new versions", fmt.Sprint(rep.ItemsWithWork)},
		{"New versions", fmt.Sprint(rep.NewVersions)},
		{"Selected this run", fmt.Sprint(rep.Processed())},
		{"Deferred", fmt.Sprint(len(rep.Deferred))},
	}
	if !rep.DryRun {
		rows = append(rows,
			[2]string{"Uploaded", StyleOK.Render(fmt.Sprint(rep.Uploaded))},
			[2]string{"Skipped", StyleWarn.Render(fmt.Sprint(rep.Skipped))},
			[2]string{"Failed", failCount(rep.Failed)},
		)
	}
	for _, r := range rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			StyleHelp.Width(26).Render(r[0]),
			StyleNormal.Render(r[1]),
		) + "\n")
	}
	if len(rep.DroppedPages) > 0 {
		b.WriteString(StyleWarn.Render(fmt.Sprintf("Catalog pages dropped: %v", rep.DroppedPages)) + "\n")
	}

	if rep.DryRun {
		if len(rep.Plan) > 0 {
			b.WriteString("\n" + StyleHeader.Render("Planned releases") + "\n")
		}
		for _, w := range rep.Plan {
			for _, mv := range w.Versions {
				tag := naming.Tag(w.Item.UID, w.Item.Name, mv.Version)
				fmt.Fprintf(&b, "  %s  %s (%d files)\n", StyleTag.Render(tag), w.Item.Name, len(mv.Files))
			}
		}
	} else if len(rep.Outcomes) > 0 {
		b.WriteString("\n" + StyleHeader.Render("Releases") + "\n")
		for _, o := range rep.Outcomes {
			b.WriteString("  " + outcomeLine(o) + "\n")
		}
	}

	return StyleBorder.Render(strings.TrimRight(b.String(), "\n"))
}

func failCount(n int) string {
	if n == 0 {
		return StyleNormal.Render("0")
	}
	return StyleFail.Render(fmt.Sprint(n))
}

func outcomeLine(o release.Outcome) string {
	var mark string
	switch o.State {
	case release.Uploaded:
		mark = StyleOK.Render("✓")
	case release.Skipped:
		mark = StyleWarn.Render("-")
	default:
		mark = StyleFail.Render("✗")
	}
	line := fmt.Sprintf("%s %s  %s", mark, StyleTag.Render(o.Tag), o.State)
	if o.Err != nil {
		line += "  " + StyleHelp.Render(o.Err.Error())
	}
	return line
}
