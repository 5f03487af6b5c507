package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mj1618/stepwright/internal/model"
)

// Status glyphs carry meaning without relying on color alone.
const (
	glyphPassed = "✓"
	glyphFailed = "✗"
)

var (
	colorGreen = lipgloss.Color("42")
	colorRed   = lipgloss.Color("196")
	colorCyan  = lipgloss.Color("51")
	colorDim   = lipgloss.Color("240")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	passedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// renderSummary formats a finished run for the terminal.
func renderSummary(s *model.RunSummary, reportPath string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Run "+s.RunID) + "\n")

	nameWidth := 0
	for _, c := range s.Cases {
		if w := lipgloss.Width(c.ID + " " + c.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for _, c := range s.Cases {
		label := c.ID + " " + c.Name
		pad := strings.Repeat(" ", nameWidth-lipgloss.Width(label))
		glyph, style := glyphPassed, passedStyle
		if !c.Passed() {
			glyph, style = glyphFailed, failedStyle
		}
		fmt.Fprintf(&b, "%s %s%s  %s\n", style.Render(glyph), label, pad, dimStyle.Render(formatSeconds(c.Duration.Seconds())))
		if !c.Passed() && c.Error != "" {
			b.WriteString("    " + failedStyle.Render(c.Error) + "\n")
		}
		if c.Screenshot != "" {
			b.WriteString("    " + dimStyle.Render("screenshot: "+c.Screenshot) + "\n")
		}
	}

	totals := fmt.Sprintf("Total %d  %s  %s  Pass rate %.1f%%  Duration %s",
		s.Total,
		passedStyle.Render(fmt.Sprintf("Passed %d", s.Passed)),
		failedStyle.Render(fmt.Sprintf("Failed %d", s.Failed)),
		s.PassRate()*100,
		formatSeconds(s.Duration.Seconds()))
	if s.Cancelled {
		totals += "  " + failedStyle.Render("(cancelled)")
	}
	if reportPath != "" {
		totals += "\nReport " + reportPath
	}
	b.WriteString(boxStyle.Render(totals) + "\n")
	return b.String()
}

func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.2fs", sec)
}
