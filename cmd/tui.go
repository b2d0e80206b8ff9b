package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner (default command)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	src, _, cache, closeSrc := rateSource()
	defer closeSrc()

	app := tui.NewApp(tui.Options{
		Planner: newPlanner(src),
		Store:   cache,
		Defaults: model.PlanInputs{
			InitialCurrency: cfg.General.InitialCurrency,
			MonthlyCurrency: cfg.General.MonthlyCurrency,
			GoalCurrency:    cfg.General.GoalCurrency,
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
