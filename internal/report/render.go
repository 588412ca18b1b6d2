package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	riskStyles  = map[string]lipgloss.Style{
		"NONE":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"LOW":      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"MEDIUM":   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"HIGH":     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"CRITICAL": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderSummary renders the aggregated report as a colorized terminal
// table. noColor disables styling for piped output or the CLI's --no-color
// flag, matching the teacher's IsDisabled convention in internal/ui/colorize.
func RenderSummary(r Report, noColor bool) string {
	var b strings.Builder

	title := fmt.Sprintf("backport run %s — %d file(s)", r.RunID, len(r.Files))
	if noColor {
		b.WriteString(title + "\n")
	} else {
		b.WriteString(headerStyle.Render(title) + "\n")
	}

	for _, f := range r.Files {
		risk := f.Risk
		if !noColor {
			if style, ok := riskStyles[risk]; ok {
				risk = style.Render(risk)
			}
		}
		line := fmt.Sprintf("  %-40s score=%-4d risk=%s stubs=%d/%d param=%v bps=%v",
			f.Path, f.Score, risk, f.StubsApplied, f.StubsApplied+f.StubsSkipped, f.ParamPatched, f.BPSApplied)
		b.WriteString(line + "\n")
		if len(f.Errors) > 0 {
			errLine := fmt.Sprintf("    errors: %s", strings.Join(f.Errors, "; "))
			if !noColor {
				errLine = dimStyle.Render(errLine)
			}
			b.WriteString(errLine + "\n")
		}
	}

	summary := fmt.Sprintf("mean score=%.1f max risk=%s fakelibs=%d",
		r.OverallScoreMean, r.OverallRiskMax, len(r.FakelibsInstalled))
	if !noColor {
		summary = headerStyle.Render(summary)
	}
	b.WriteString(summary + "\n")

	return b.String()
}
