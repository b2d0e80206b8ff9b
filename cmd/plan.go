package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/export"
	"github.com/theirongolddev/goalplan/internal/model"
)

var (
	flagGoal            float64
	flagMonths          int
	flagRate            float64
	flagInitial         float64
	flagGoalCurrency    string
	flagInitialCurrency string
	flagMonthlyCurrency string
	flagPlanJSON        bool
	flagPlanExport      string
	flagNoSave          bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Solve the monthly investment needed to reach a goal",
	Example: "  goalplan plan --goal 100000 --months 60 --rate 8\n" +
		"  goalplan plan --goal 50000 --months 36 --monthly-currency INR --goal-currency EUR --export plan.xlsx",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Float64Var(&flagGoal, "goal", 0, "Goal amount in the goal currency")
	planCmd.Flags().IntVar(&flagMonths, "months", 0, "Investment horizon in months")
	planCmd.Flags().Float64Var(&flagRate, "rate", 0, "Expected annual return in percent")
	planCmd.Flags().Float64Var(&flagInitial, "initial", 0, "Initial investment in the initial currency")
	planCmd.Flags().StringVar(&flagGoalCurrency, "goal-currency", "", "Goal currency (default from config)")
	planCmd.Flags().StringVar(&flagInitialCurrency, "initial-currency", "", "Initial investment currency (default from config)")
	planCmd.Flags().StringVar(&flagMonthlyCurrency, "monthly-currency", "", "Monthly contribution currency (default from config)")
	planCmd.Flags().BoolVar(&flagPlanJSON, "json", false, "Print the plan as JSON")
	planCmd.Flags().StringVar(&flagPlanExport, "export", "", "Write the schedule to a .csv, .xlsx or .pdf file")
	planCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Don't record the plan in history")
	_ = planCmd.MarkFlagRequired("goal")
	_ = planCmd.MarkFlagRequired("months")
	rootCmd.AddCommand(planCmd)
}

func currencyFlag(raw string, def model.Currency) (model.Currency, error) {
	if raw == "" {
		return def, nil
	}
	c := config.NormalizeCurrency(raw)
	if !config.IsSupported(c) {
		return "", fmt.Errorf("unsupported currency %q (see `goalplan currencies`)", raw)
	}
	return c, nil
}

func planInputsFromFlags() (model.PlanInputs, error) {
	in := model.PlanInputs{
		GoalAmount:        flagGoal,
		HorizonMonths:     flagMonths,
		AnnualRatePercent: flagRate,
		InitialInvestment: flagInitial,
	}
	var err error
	if in.GoalCurrency, err = currencyFlag(flagGoalCurrency, cfg.General.GoalCurrency); err != nil {
		return in, err
	}
	if in.InitialCurrency, err = currencyFlag(flagInitialCurrency, cfg.General.InitialCurrency); err != nil {
		return in, err
	}
	if in.MonthlyCurrency, err = currencyFlag(flagMonthlyCurrency, cfg.General.MonthlyCurrency); err != nil {
		return in, err
	}
	return in, nil
}

func runPlan(cmd *cobra.Command, _ []string) error {
	in, err := planInputsFromFlags()
	if err != nil {
		return err
	}
	if flagPlanExport != "" {
		// Fail on a bad extension before any network work.
		if _, err := export.FormatFromPath(flagPlanExport); err != nil {
			return err
		}
	}

	src, cs, cache, closeSrc := rateSource()
	defer closeSrc()

	if !in.SingleCurrency() {
		notice("  Forecasting exchange rates...\n")
	}
	start := time.Now()
	p, err := newPlanner(src).Plan(cmd.Context(), in)
	if err != nil {
		return friendlyError(err)
	}
	logger.Debug("plan computed", zap.String("plan_id", p.ID), zap.Duration("elapsed", time.Since(start)))
	if cs != nil {
		logger.Debug("rate cache", zap.Int64("hits", cs.Hits()), zap.Int64("misses", cs.Misses()))
	}

	if !flagNoSave && cache != nil {
		if err := cache.SavePlan(p); err != nil {
			notice("  Plan not saved to history: %v\n", err)
		}
	}

	if flagPlanExport != "" {
		if err := export.ToFile(p, flagPlanExport); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		notice("  Wrote %s\n", flagPlanExport)
	}

	if flagPlanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	fmt.Println()
	fmt.Print(cli.RenderPlan(p))
	fmt.Println()
	return nil
}
