package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/goalplan/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	rateStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	errStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// pad aligns s to w display cells. Currency symbols are multi-byte,
// so widths are measured in cells rather than bytes.
func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func ruleLine(widths []int, left, mid, right string) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders a bordered table with headers and rows.
// The first column is left-aligned, the rest right-aligned.
// A row of exactly {"---"} renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(ruleLine(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(ruleLine(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(ruleLine(widths, "├", "┼", "┤"))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(ruleLine(widths, "╰", "┴", "╯"))
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline scaled between the
// series minimum and maximum. A flat series renders at mid height.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := len(blocks) / 2
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// thin keeps at most n evenly spaced values, always including the last.
func thin(values []float64, n int) []float64 {
	if len(values) <= n || n < 2 {
		return values
	}
	out := make([]float64, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// RenderHorizontalBar renders one labelled bar filling frac of maxWidth.
func RenderHorizontalBar(label, value string, frac float64, maxWidth int) string {
	if frac < 0 || math.IsNaN(frac) {
		frac = 0
	}
	barLen := int(math.Round(math.Min(frac, 1) * float64(maxWidth)))
	bar := strings.Repeat("█", barLen) + strings.Repeat(" ", maxWidth-barLen)
	return fmt.Sprintf("  %s %s %s", mutedStyle.Render(pad(label, 4, false)), moneyStyle.Render(bar), value)
}

// RenderTrajectory renders the year-end balances of a goal-currency trajectory
// as horizontal bars, with the goal as the full-width reference.
func RenderTrajectory(trajectory []float64, goal float64, c model.Currency, width int) string {
	if len(trajectory) == 0 {
		return ""
	}

	scale := goal
	for _, v := range trajectory {
		scale = math.Max(scale, v)
	}
	if scale <= 0 {
		scale = 1
	}

	var b strings.Builder
	for i, v := range trajectory {
		month := i + 1
		if month%12 != 0 && month != len(trajectory) {
			continue
		}
		label := fmt.Sprintf("M%d", month)
		if month%12 == 0 {
			label = fmt.Sprintf("Y%d", month/12)
		}
		b.WriteString(RenderHorizontalBar(label, FormatMoney(v, c), v/scale, width))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSuggestions renders advice as a bullet list; warnings are highlighted.
func RenderSuggestions(suggestions []model.Suggestion) string {
	var b strings.Builder
	for _, s := range suggestions {
		if s.IsWarning() {
			b.WriteString("  " + warnStyle.Render("!") + " " + s.Message + "\n")
		} else {
			b.WriteString("  " + moneyStyle.Render("✓") + " " + s.Message + "\n")
		}
	}
	return b.String()
}

// RenderError renders a one-line error for stderr.
func RenderError(err error) string {
	return errStyle.Render("error: ") + err.Error()
}

// RenderSnapshot renders one currency pair's forecast.
func RenderSnapshot(s model.FxSnapshot) string {
	pair := string(s.Base) + "/" + string(s.Target)
	rows := [][]string{
		{"Current", rateStyle.Render(FormatRate(s.CurrentRate))},
		{"Predicted", rateStyle.Render(FormatRate(s.PredictedRate))},
		{"Confidence", FormatPercent(s.Confidence)},
		{"Samples", FormatNumber(int64(len(s.History)))},
	}
	if s.Degenerate {
		rows = append(rows, []string{"Trend", warnStyle.Render("flat (insufficient history)")})
	}

	out := RenderTable(Table{Title: pair, Rows: rows})
	if len(s.History) > 0 {
		rates := make([]float64, len(s.History))
		for i, h := range s.History {
			rates[i] = h.Rate
		}
		out += "  " + mutedStyle.Render("history  ") + RenderSparkline(thin(rates, 40)) + "\n"
	}
	if len(s.Curve) > 0 {
		out += "  " + mutedStyle.Render("forecast ") + RenderSparkline(thin(s.Curve, 40)) + "\n"
	}
	return out
}

// RenderPlan renders the complete plan report.
func RenderPlan(p *model.Plan) string {
	in, res := p.Inputs, p.Result
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("Goal: %s in %s", FormatMoney(in.GoalAmount, in.GoalCurrency), FormatHorizon(in.HorizonMonths))))
	b.WriteString("\n\n")

	b.WriteString(RenderTable(Table{
		Title:   "Plan",
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Monthly investment", FormatMoney(res.MonthlyContribution, in.MonthlyCurrency)},
			{"  in goal currency", FormatMoney(res.MonthlyContributionGoal, in.GoalCurrency)},
			{"Initial investment", FormatMoney(in.InitialInvestment, in.InitialCurrency)},
			{"  in goal currency", FormatMoney(res.PresentValueGoal, in.GoalCurrency)},
			{"---"},
			{"Total contributed", FormatMoney(res.TotalContributed, in.MonthlyCurrency)},
			{"Projected value", FormatMoney(res.FinalProjectedValue, in.GoalCurrency)},
			{"Versus goal", FormatDelta(res.FinalProjectedValue, in.GoalAmount, in.GoalCurrency)},
			{"Annual return", fmt.Sprintf("%.2f%%", in.AnnualRatePercent)},
		},
	}))

	if in.SingleCurrency() {
		b.WriteString("\n  ")
		b.WriteString(mutedStyle.Render("No currency conversion required."))
		b.WriteString("\n")
	} else {
		var rows [][]string
		for _, s := range []model.FxSnapshot{p.FX.InitialToGoal, p.FX.MonthlyToGoal, p.FX.MonthlyToInitial} {
			if s.Identity() {
				continue
			}
			conf := FormatPercent(s.Confidence)
			if s.Degenerate {
				conf = warnStyle.Render(conf)
			}
			rows = append(rows, []string{
				string(s.Base) + "/" + string(s.Target),
				FormatRate(s.CurrentRate),
				FormatRate(s.PredictedRate),
				conf,
				RenderSparkline(thin(s.Curve, 24)),
			})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Exchange rates",
			Headers: []string{"Pair", "Current", "Predicted", "Confidence", "Forecast"},
			Rows:    rows,
		}))
	}

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("Projected balance"))
	b.WriteString("\n")
	b.WriteString(RenderTrajectory(res.TrajectoryGoal, in.GoalAmount, in.GoalCurrency, 30))
	if in.MonthlyCurrency != in.GoalCurrency && len(res.TrajectoryMonthly) > 0 {
		b.WriteString("\n  ")
		b.WriteString(headerStyle.Render("Projected balance (" + string(in.MonthlyCurrency) + ")"))
		b.WriteString("\n")
		b.WriteString(RenderTrajectory(res.TrajectoryMonthly, 0, in.MonthlyCurrency, 30))
	}

	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("Suggestions"))
	b.WriteString("\n")
	b.WriteString(RenderSuggestions(p.Suggestions))

	return b.String()
}
