package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
)

var errNotWholeNumber = errors.New("enter a whole number")

// formValues backs the plan form. Numeric fields stay strings until submit
// so partially typed values survive editing.
type formValues struct {
	Goal    string
	Horizon string
	Rate    string
	Initial string

	GoalCurrency    model.Currency
	InitialCurrency model.Currency
	MonthlyCurrency model.Currency
}

func valuesFrom(in model.PlanInputs) *formValues {
	v := &formValues{
		GoalCurrency:    in.GoalCurrency,
		InitialCurrency: in.InitialCurrency,
		MonthlyCurrency: in.MonthlyCurrency,
	}
	if in.GoalAmount > 0 {
		v.Goal = strconv.FormatFloat(in.GoalAmount, 'f', -1, 64)
	}
	if in.HorizonMonths > 0 {
		v.Horizon = strconv.Itoa(in.HorizonMonths)
	}
	v.Rate = strconv.FormatFloat(in.AnnualRatePercent, 'f', -1, 64)
	v.Initial = strconv.FormatFloat(in.InitialInvestment, 'f', -1, 64)
	return v
}

// parseAmount accepts "100000", "100,000" and "100_000.50".
func parseAmount(s string) (float64, error) {
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return 0, errors.New("enter a number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func validateAmount(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateRate(s string) error {
	v, err := parseAmount(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return err
	}
	if v <= -1200 {
		return errors.New("must be above -1200%")
	}
	return nil
}

func validateHorizon(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w of months", errNotWholeNumber)
	}
	if n < 1 {
		return errors.New("must be at least 1 month")
	}
	return nil
}

// inputs converts submitted values into plan inputs.
func (v *formValues) inputs() (model.PlanInputs, error) {
	if err := errors.Join(
		validateAmount(v.Goal),
		validateHorizon(v.Horizon),
		validateRate(v.Rate),
		validateAmount(v.Initial),
	); err != nil {
		return model.PlanInputs{}, err
	}

	goal, _ := parseAmount(v.Goal)
	rate, _ := parseAmount(strings.TrimSuffix(strings.TrimSpace(v.Rate), "%"))
	initial, _ := parseAmount(v.Initial)
	horizon, _ := strconv.Atoi(strings.TrimSpace(v.Horizon))

	return model.PlanInputs{
		GoalAmount:        goal,
		HorizonMonths:     horizon,
		AnnualRatePercent: rate,
		InitialInvestment: initial,
		InitialCurrency:   v.InitialCurrency,
		MonthlyCurrency:   v.MonthlyCurrency,
		GoalCurrency:      v.GoalCurrency,
	}, nil
}

func currencyOptions() []huh.Option[model.Currency] {
	opts := make([]huh.Option[model.Currency], len(config.Currencies))
	for i, c := range config.Currencies {
		opts[i] = huh.NewOption(fmt.Sprintf("%s  %s (%s)", c.Code, c.Name, c.Symbol), c.Code)
	}
	return opts
}

func newPlanForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Currency]().
				Title("Goal currency").
				Description("The currency you will withdraw in.").
				Options(currencyOptions()...).
				Value(&v.GoalCurrency),
			huh.NewInput().
				Title("Goal amount").
				Placeholder("100000").
				Validate(validateAmount).
				Value(&v.Goal),
			huh.NewInput().
				Title("Horizon (months)").
				Placeholder("60").
				Validate(validateHorizon).
				Value(&v.Horizon),
			huh.NewInput().
				Title("Expected annual return (%)").
				Placeholder("8").
				Validate(validateRate).
				Value(&v.Rate),
		),
		huh.NewGroup(
			huh.NewSelect[model.Currency]().
				Title("Initial investment currency").
				Options(currencyOptions()...).
				Value(&v.InitialCurrency),
			huh.NewInput().
				Title("Initial investment").
				Placeholder("0").
				Validate(validateAmount).
				Value(&v.Initial),
			huh.NewSelect[model.Currency]().
				Title("Monthly contribution currency").
				Description("The currency you will invest in every month.").
				Options(currencyOptions()...).
				Value(&v.MonthlyCurrency),
		),
	).WithTheme(huh.ThemeCharm())
}
