package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/planner"
	"github.com/theirongolddev/goalplan/internal/tui/components"
	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  goalplan needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}

	switch a.state {
	case stateLoading:
		return a.viewLoading()
	case stateResult:
		return a.viewResult()
	case stateError:
		return a.viewError()
	}
	return a.viewForm()
}

func header() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ goalplan")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" · Goal Investment Planner")
	return logo + sub
}

func (a App) viewForm() string {
	var b strings.Builder
	b.WriteString("\n ")
	b.WriteString(header())
	b.WriteString("\n\n")
	b.WriteString(a.form.View())
	return b.String()
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(2, 4)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	in := a.inputs
	var b strings.Builder
	b.WriteString(header())
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if in.SingleCurrency() {
		b.WriteString(subtitleStyle.Render(" Solving plan..."))
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Forecasting %s → %s exchange rates...",
			in.MonthlyCurrency, in.GoalCurrency)))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewError() string {
	t := theme.Active
	w := a.contentWidth()

	title := "Could not build plan"
	if planner.IsRetryable(a.err) {
		title = "Exchange rates unavailable"
	}
	body := lipgloss.NewStyle().Foreground(t.Error).Width(components.CardInnerWidth(w)).Render(a.err.Error())
	if planner.IsRetryable(a.err) {
		body += "\n\n" + lipgloss.NewStyle().Foreground(t.TextMuted).Render("This is usually temporary. Press r to retry.")
	}

	hints := []components.KeyHint{{Key: "e", Action: "dit"}, {Key: "r", Action: "etry"}, {Key: "q", Action: "uit"}}
	return "\n " + header() + "\n\n" +
		components.ContentCard(title, body, w) + "\n" +
		components.RenderStatusBar(w, hints, "")
}

func (a App) viewResult() string {
	t := theme.Active
	p := a.plan
	in, res := p.Inputs, p.Result
	w := a.contentWidth()

	var b strings.Builder
	b.WriteString("\n ")
	b.WriteString(header())
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true).Render(
		fmt.Sprintf("   %s in %s", cli.FormatMoney(in.GoalAmount, in.GoalCurrency), cli.FormatHorizon(in.HorizonMonths))))
	b.WriteString("\n\n")

	monthly := components.Metric{
		Label: "Monthly investment",
		Value: cli.FormatMoney(res.MonthlyContribution, in.MonthlyCurrency),
		Color: t.AccentBright,
	}
	if in.MonthlyCurrency != in.GoalCurrency {
		monthly.Note = "≈ " + cli.FormatMoney(res.MonthlyContributionGoal, in.GoalCurrency)
	}
	metrics := []components.Metric{
		monthly,
		{Label: "Total contributed", Value: cli.FormatMoney(res.TotalContributed, in.MonthlyCurrency)},
		{Label: "Projected value", Value: cli.FormatMoney(res.FinalProjectedValue, in.GoalCurrency), Color: t.ForProjection(res.FinalProjectedValue, in.GoalAmount)},
		{Label: "Annual return", Value: fmt.Sprintf("%.2f%%", in.AnnualRatePercent)},
	}
	b.WriteString(components.MetricCardRow(metrics, w))
	b.WriteString("\n")

	if in.GoalAmount > 0 {
		barW := max(10, w-30)
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render("Goal coverage "))
		b.WriteString(components.ProgressBar(res.FinalProjectedValue/in.GoalAmount, barW))
		b.WriteString("\n")
	}

	if a.isCompactLayout() {
		b.WriteString(a.trajectoryCard(w))
		b.WriteString("\n")
		b.WriteString(a.fxCard(w))
	} else {
		widths := components.LayoutRow(w, 2)
		chartW := widths[0] + widths[0]/3
		b.WriteString(components.CardRow([]string{a.trajectoryCard(chartW), a.fxCard(w - chartW)}))
	}
	b.WriteString("\n")
	b.WriteString(a.suggestionsCard(w))
	b.WriteString("\n")

	info := fmt.Sprintf("%s · computed in %s", shortID(p.ID), a.elapsed.Round(time.Millisecond))
	if a.saveErr != nil {
		info = "not saved: " + a.saveErr.Error()
	}
	hints := []components.KeyHint{{Key: "e", Action: "dit"}, {Key: "r", Action: "ecompute"}, {Key: "q", Action: "uit"}}
	b.WriteString(components.RenderStatusBar(w, hints, info))

	return b.String()
}

func (a App) trajectoryCard(outerW int) string {
	p := a.plan
	labels := make([]string, len(p.Result.TrajectoryGoal))
	for i := range labels {
		labels[i] = monthLabel(i + 1)
	}
	chart := components.TrajectoryChart(p.Result.TrajectoryGoal, p.Inputs.GoalAmount, labels,
		components.CardInnerWidth(outerW), 10)
	return components.ContentCard("Projected balance ("+string(p.Inputs.GoalCurrency)+")", chart, outerW)
}

func (a App) fxCard(outerW int) string {
	t := theme.Active
	p := a.plan
	s := p.FX.MonthlyToGoal

	if s.Identity() {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted)
		return components.ContentCard("Exchange rate", muted.Render("No conversion needed."), outerW)
	}

	inner := components.CardInnerWidth(outerW)
	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Render("Now       "), value.Render(cli.FormatRate(s.CurrentRate)))
	fmt.Fprintf(&b, "%s %s  %s\n", label.Render("Predicted "), value.Render(cli.FormatRate(s.PredictedRate)),
		label.Render(rateChange(s.CurrentRate, s.PredictedRate)))
	b.WriteString(components.ConfidenceBar("Confidence", s.Confidence, 10, max(8, inner-17)))
	b.WriteString("\n\n")
	curve := s.Curve
	if len(curve) > inner {
		curve = curve[:inner]
	}
	b.WriteString(components.Sparkline(curve, t.Forecast))
	if s.Degenerate {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Render("Not enough history; assuming a flat rate."))
	}

	return components.ContentCard(string(s.Base)+" → "+string(s.Target), b.String(), outerW)
}

func (a App) suggestionsCard(outerW int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outerW)

	lines := make([]string, 0, len(a.plan.Suggestions))
	for _, s := range a.plan.Suggestions {
		marker := lipgloss.NewStyle().Foreground(t.ForSuggestion(s.IsWarning())).Render("● ")
		text := lipgloss.NewStyle().Foreground(t.TextPrimary).Width(inner - 2).Render(s.Message)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, marker, text))
	}
	return components.ContentCard("Suggestions", strings.Join(lines, "\n"), outerW)
}

// monthLabel renders month 12 as "Y1" and other months as "M7".
func monthLabel(m int) string {
	if m%12 == 0 {
		return fmt.Sprintf("Y%d", m/12)
	}
	return fmt.Sprintf("M%d", m)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func rateChange(from, to float64) string {
	if from <= 0 {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", (to-from)/from*100)
}
