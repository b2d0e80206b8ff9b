package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/frankfurter"
	"github.com/theirongolddev/goalplan/internal/pipeline"
	"github.com/theirongolddev/goalplan/internal/planner"
	"github.com/theirongolddev/goalplan/internal/store"
	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

var (
	flagQuiet   bool
	flagNoCache bool
	flagVerbose bool
)

// Loaded once per invocation by the root PersistentPreRunE.
var (
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "goalplan",
	Short: "Goal investment planner with exchange rate forecasts",
	Long: "Work out the monthly investment needed to reach a savings goal,\n" +
		"contributing in one currency and withdrawing in another.",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { _ = logger.Sync() },
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip cached rates and fetch fresh ones")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging on stderr")
}

func initRuntime(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	theme.SetActive(cfg.Appearance.Theme)

	level := zapcore.WarnLevel
	switch {
	case flagVerbose:
		level = zapcore.DebugLevel
	case cmd == serveCmd:
		level = zapcore.InfoLevel
	}
	logger = initLogger(level)
	return nil
}

func notice(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// rateSource is the shared rate lookup path used by all commands.
// Uses the SQLite cache when available so repeated runs skip the network.
// The returned close func releases the cache and is always safe to call.
func rateSource() (forecast.RateSource, *pipeline.CachedSource, *store.Cache, func()) {
	client := frankfurter.NewClient(config.RatesURL(cfg), logger.Named("frankfurter"))

	cache, err := openStore()
	if err != nil {
		// Cache open failed; go straight to the API
		notice("  Cache unavailable, fetching rates directly\n")
		logger.Warn("cache unavailable", zap.Error(err))
		return client, nil, nil, func() {}
	}

	opts := []pipeline.CacheOption{pipeline.WithLogger(logger.Named("cache"))}
	if flagNoCache {
		opts = append(opts, pipeline.WithoutReads())
	}
	cs := pipeline.NewCachedSource(client, cache, cfg.CacheTTL(), opts...)
	return cs, cs, cache, func() { _ = cache.Close() }
}

func openStore() (*store.Cache, error) {
	return store.Open(pipeline.CachePath())
}

func newPlanner(src forecast.RateSource) *planner.Planner {
	return planner.New(src, planner.Options{
		WindowMonths: cfg.General.HistoryMonths,
		FetchTimeout: cfg.FetchTimeout(),
		Advisor:      cfg.Advisor,
	})
}

// friendlyError maps planner sentinels to something a user can act on.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, frankfurter.ErrRateLimited):
		return fmt.Errorf("%w\n  The rates API is rate limiting requests; wait a minute and retry", err)
	case errors.Is(err, frankfurter.ErrUnknownCurrency):
		return fmt.Errorf("%w\n  The rates API does not quote this pair", err)
	case planner.IsRetryable(err):
		return fmt.Errorf("%w\n  Exchange rates are unavailable right now; try again shortly", err)
	}
	return err
}
