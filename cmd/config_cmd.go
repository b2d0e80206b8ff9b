// Package cmd implements the goalplan CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Cache:       %s\n", pipeline.CachePath())
	if cache, err := openStore(); err == nil {
		if st, err := cache.RateStats(); err == nil {
			fmt.Printf("               %d spot rate(s), %d history window(s), %d sample(s)\n",
				st.SpotPairs, st.HistoryPairs, st.Samples)
		}
		if n, err := cache.PlanCount(); err == nil {
			fmt.Printf("               %d saved plan(s)\n", n)
		}
		_ = cache.Close()
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Goal currency:     %s\n", cfg.General.GoalCurrency)
	fmt.Printf("    Initial currency:  %s\n", cfg.General.InitialCurrency)
	fmt.Printf("    Monthly currency:  %s\n", cfg.General.MonthlyCurrency)
	fmt.Printf("    History window:    %d months\n", cfg.General.HistoryMonths)
	fmt.Println()

	fmt.Println("  [Rates]")
	fmt.Printf("    API:       %s\n", config.RatesURL(cfg))
	fmt.Printf("    Timeout:   %s\n", cfg.FetchTimeout())
	fmt.Printf("    Cache TTL: %s\n", cfg.CacheTTL())
	fmt.Println()

	fmt.Println("  [Advisor]")
	fmt.Printf("    Low confidence below:     %.2f\n", cfg.Advisor.LowConfidence)
	fmt.Printf("    Contribution share:       %.0f%%\n", cfg.Advisor.ContributionShare*100)
	fmt.Printf("    Shortfall tolerance:      %.0f%%\n", cfg.Advisor.ShortfallTolerance*100)
	fmt.Printf("    Horizon extension:        %d months\n", cfg.Advisor.HorizonExtensionMonths)
	fmt.Printf("    Compare currencies:       %v\n", cfg.Advisor.CompareCurrencies)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:     %s\n", cfg.Server.Addr)
	fmt.Printf("    Refresh:     %s\n", cfg.Server.RefreshSchedule)
	if len(cfg.Server.WatchPairs) > 0 {
		fmt.Printf("    Watch pairs: %s\n", strings.Join(cfg.Server.WatchPairs, ", "))
	} else {
		fmt.Println("    Watch pairs: none")
	}
	fmt.Println()

	fmt.Println("  Run `goalplan setup` to reconfigure.")
	return nil
}
