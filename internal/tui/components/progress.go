package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

// ProgressBar renders a block bar with a percentage, e.g. how much of the
// goal the projected balance covers.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	var barColor lipgloss.Color
	switch {
	case pct >= 1:
		barColor = t.OnTrack
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Building
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Bold(true)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + " " + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ConfidenceBar renders a labeled forecast confidence gauge.
func ConfidenceBar(label string, confidence float64, labelW, barWidth int) string {
	t := theme.Active
	confidence = clamp01(confidence)
	color := t.ForConfidence(confidence)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		" " + bar.ViewAs(confidence) +
		" " + pctStyle.Render(fmt.Sprintf("%3.0f%%", confidence*100))
}
