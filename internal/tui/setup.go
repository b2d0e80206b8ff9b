package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/tui/theme"
)

// SetupValues backs the first-run setup form.
type SetupValues struct {
	GoalCurrency    model.Currency
	InitialCurrency model.Currency
	MonthlyCurrency model.Currency
	HistoryMonths   int
	CacheTTL        string
	Theme           string
	Compare         bool
}

var historyOptions = []int{3, 6, 12}

// SetupValuesFrom prefills the setup form from cfg.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	return &SetupValues{
		GoalCurrency:    cfg.General.GoalCurrency,
		InitialCurrency: cfg.General.InitialCurrency,
		MonthlyCurrency: cfg.General.MonthlyCurrency,
		HistoryMonths:   cfg.General.HistoryMonths,
		CacheTTL:        strconv.Itoa(cfg.Rates.CacheTTLHours),
		Theme:           cfg.Appearance.Theme,
		Compare:         cfg.Advisor.CompareCurrencies,
	}
}

// Apply copies the answers into cfg and activates the chosen theme.
func (v *SetupValues) Apply(cfg *config.Config) {
	cfg.General.GoalCurrency = v.GoalCurrency
	cfg.General.InitialCurrency = v.InitialCurrency
	cfg.General.MonthlyCurrency = v.MonthlyCurrency
	cfg.General.HistoryMonths = v.HistoryMonths
	if ttl, err := strconv.Atoi(v.CacheTTL); err == nil && ttl >= 0 {
		cfg.Rates.CacheTTLHours = ttl
	}
	cfg.Appearance.Theme = v.Theme
	cfg.Advisor.CompareCurrencies = v.Compare
	theme.SetActive(v.Theme)
}

func validateTTL(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errNotWholeNumber
	}
	return nil
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	history := make([]huh.Option[int], len(historyOptions))
	for i, m := range historyOptions {
		history[i] = huh.NewOption(strconv.Itoa(m)+" months", m)
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to goalplan").
				Description("Pick the defaults used to prefill new plans.\nRun `goalplan setup` anytime to change them."),
			huh.NewSelect[model.Currency]().
				Title("Default goal currency").
				Options(currencyOptions()...).
				Value(&v.GoalCurrency),
			huh.NewSelect[model.Currency]().
				Title("Default initial investment currency").
				Options(currencyOptions()...).
				Value(&v.InitialCurrency),
			huh.NewSelect[model.Currency]().
				Title("Default monthly contribution currency").
				Options(currencyOptions()...).
				Value(&v.MonthlyCurrency),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Rate history used for forecasts").
				Options(history...).
				Value(&v.HistoryMonths),
			huh.NewInput().
				Title("Keep downloaded rates for (hours)").
				Description("0 always fetches fresh rates.").
				Validate(validateTTL).
				Value(&v.CacheTTL),
			huh.NewConfirm().
				Title("Suggest cheaper contribution currencies?").
				Value(&v.Compare),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}
