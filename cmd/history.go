package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved plans, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a saved plan (a unique ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved plan",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Max plans to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cache, err := openStore()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = cache.Close() }()

	plans, err := cache.ListPlans(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Println("\n  No saved plans yet. Run `goalplan plan` or `goalplan` to create one.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, len(plans))
	for i, p := range plans {
		rows[i] = []string{
			shortPlanID(p.ID),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			cli.FormatMoney(p.GoalAmount, p.GoalCurrency),
			cli.FormatHorizon(p.HorizonMonths),
			cli.FormatMoney(p.MonthlyContribution, p.MonthlyCurrency),
			cli.FormatMoney(p.FinalValue, p.GoalCurrency),
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Saved plans",
		Headers: []string{"ID", "Created", "Goal", "Horizon", "Monthly", "Projected"},
		Rows:    rows,
	}))
	fmt.Println("\n  Show one with: goalplan history show ID")
	fmt.Println()
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	cache, err := openStore()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = cache.Close() }()

	p, err := cache.GetPlan(args[0])
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no saved plan matches %q", args[0])
	case err != nil:
		return err
	}

	fmt.Println()
	fmt.Printf("  Plan %s, saved %s\n\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Print(cli.RenderPlan(p))
	fmt.Println()
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	cache, err := openStore()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = cache.Close() }()

	n, err := cache.ClearPlans()
	if err != nil {
		return err
	}
	fmt.Printf("  Removed %d saved plan(s)\n", n)
	return nil
}

func shortPlanID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
