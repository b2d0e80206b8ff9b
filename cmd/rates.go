package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/pipeline"
)

var (
	flagRatesMonths  int
	flagRatesWindow  int
	flagRatesRefresh bool
)

var ratesCmd = &cobra.Command{
	Use:   "rates [BASE TARGET]",
	Short: "Show the current rate and forecast for a currency pair",
	Example: "  goalplan rates USD EUR --months 24\n" +
		"  goalplan rates --refresh",
	Args: func(cmd *cobra.Command, args []string) error {
		if flagRatesRefresh {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runRates,
}

func init() {
	ratesCmd.Flags().IntVar(&flagRatesMonths, "months", 12, "Forecast horizon in months")
	ratesCmd.Flags().IntVar(&flagRatesWindow, "window", 0, "History window in months (default from config)")
	ratesCmd.Flags().BoolVar(&flagRatesRefresh, "refresh", false, "Re-fetch every watched pair into the cache")
	rootCmd.AddCommand(ratesCmd)
}

func runRates(cmd *cobra.Command, args []string) error {
	window := flagRatesWindow
	if window < 1 {
		window = cfg.General.HistoryMonths
	}
	if flagRatesMonths < 1 {
		return errors.New("--months must be at least 1")
	}

	if flagRatesRefresh {
		return runRatesRefresh(cmd, window)
	}

	base := config.NormalizeCurrency(args[0])
	target := config.NormalizeCurrency(args[1])
	for _, c := range []model.Currency{base, target} {
		if !config.IsSupported(c) {
			return fmt.Errorf("unsupported currency %q (see `goalplan currencies`)", c)
		}
	}

	src, _, _, closeSrc := rateSource()
	defer closeSrc()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout())
	defer cancel()

	snap, err := forecast.Snapshot(ctx, src, base, target, flagRatesMonths, window)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Println()
	fmt.Print(cli.RenderSnapshot(snap))
	fmt.Printf("\n  %s predicted over %s from %d months of history\n\n",
		cli.FormatRate(snap.PredictedRate), cli.FormatHorizon(flagRatesMonths), window)
	return nil
}

func runRatesRefresh(cmd *cobra.Command, window int) error {
	pairs, err := pipeline.ParsePairs(cfg.Server.WatchPairs)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return errors.New("no watch_pairs configured under [server]")
	}

	_, cs, _, closeSrc := rateSource()
	defer closeSrc()
	if cs == nil {
		return errors.New("rate cache is unavailable")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout())
	defer cancel()

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Refreshing %s", cli.RenderProgressBar(current, total, 20))
	}
	res := cs.Refresh(ctx, pairs, window, progressFn)
	notice("\n")

	rows := make([][]string, 0, len(res.Pairs))
	for _, r := range res.Pairs {
		status := "ok"
		rate := cli.FormatRate(r.Rate)
		if r.Err != nil {
			status = r.Err.Error()
			rate = "-"
		}
		rows = append(rows, []string{r.Pair.String(), rate, cli.FormatNumber(int64(r.Samples)), status})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Refreshed in " + res.Duration.Round(time.Millisecond).String(),
		Headers: []string{"Pair", "Rate", "Samples", "Status"},
		Rows:    rows,
	}))
	fmt.Println()

	if res.Failed > 0 {
		return fmt.Errorf("%d of %d pairs failed to refresh", res.Failed, len(res.Pairs))
	}
	return nil
}
