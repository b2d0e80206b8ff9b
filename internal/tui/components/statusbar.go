package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

// KeyHint is one "[key]action" entry in the status bar.
type KeyHint struct {
	Key    string
	Action string
}

// RenderStatusBar renders key hints on the left and info on the right.
func RenderStatusBar(width int, hints []KeyHint, info string) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent)
	actionStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var left strings.Builder
	left.WriteString(" ")
	for i, h := range hints {
		if i > 0 {
			left.WriteString("  ")
		}
		left.WriteString(keyStyle.Render("[" + h.Key + "]"))
		left.WriteString(actionStyle.Render(h.Action))
	}

	right := ""
	if info != "" {
		right = actionStyle.Render(info + " ")
	}

	padding := max(0, width-lipgloss.Width(left.String())-lipgloss.Width(right))
	return left.String() + strings.Repeat(" ", padding) + right
}
