package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/goalplan/internal/cli"
	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
	"github.com/theirongolddev/goalplan/internal/store"
)

// PlanSummary is the listing view of a plan. Money is rounded to cents.
type PlanSummary struct {
	ID                  string          `json:"id"`
	CreatedAt           time.Time       `json:"created_at"`
	GoalAmount          decimal.Decimal `json:"goal_amount"`
	GoalCurrency        model.Currency  `json:"goal_currency"`
	MonthlyCurrency     model.Currency  `json:"monthly_currency"`
	HorizonMonths       int             `json:"horizon_months"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	FinalValue          decimal.Decimal `json:"final_value"`
}

// RateView is an FX snapshot without its fitted history.
type RateView struct {
	Base          model.Currency      `json:"base"`
	Target        model.Currency      `json:"target"`
	CurrentRate   float64             `json:"current_rate"`
	PredictedRate float64             `json:"predicted_rate"`
	Confidence    float64             `json:"confidence"`
	Degenerate    bool                `json:"degenerate,omitempty"`
	Curve         model.ForecastCurve `json:"curve"`
}

// PlanResponse is the full plan as served by the API.
type PlanResponse struct {
	PlanSummary
	Inputs                  model.PlanInputs    `json:"inputs"`
	MonthlyContributionGoal decimal.Decimal     `json:"monthly_contribution_goal"`
	PresentValueGoal        decimal.Decimal     `json:"present_value_goal"`
	TotalContributed        decimal.Decimal     `json:"total_contributed"`
	TrajectoryGoal          []decimal.Decimal   `json:"trajectory_goal"`
	TrajectoryMonthly       []decimal.Decimal   `json:"trajectory_monthly"`
	FX                      map[string]RateView `json:"fx"`
	Suggestions             []model.Suggestion  `json:"suggestions"`
}

// CurrencyView is one entry of /v1/currencies.
type CurrencyView struct {
	Code   model.Currency `json:"code"`
	Name   string         `json:"name"`
	Symbol string         `json:"symbol"`
}

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func summarize(p *model.Plan) PlanSummary {
	return PlanSummary{
		ID:                  p.ID,
		CreatedAt:           p.CreatedAt,
		GoalAmount:          cli.Money(p.Inputs.GoalAmount),
		GoalCurrency:        p.Inputs.GoalCurrency,
		MonthlyCurrency:     p.Inputs.MonthlyCurrency,
		HorizonMonths:       p.Inputs.HorizonMonths,
		MonthlyContribution: cli.Money(p.Result.MonthlyContribution),
		FinalValue:          cli.Money(p.Result.FinalProjectedValue),
	}
}

func summaryFromStore(s store.PlanSummary) PlanSummary {
	return PlanSummary{
		ID:                  s.ID,
		CreatedAt:           s.CreatedAt,
		GoalAmount:          cli.Money(s.GoalAmount),
		GoalCurrency:        s.GoalCurrency,
		MonthlyCurrency:     s.MonthlyCurrency,
		HorizonMonths:       s.HorizonMonths,
		MonthlyContribution: cli.Money(s.MonthlyContribution),
		FinalValue:          cli.Money(s.FinalValue),
	}
}

func rateView(s model.FxSnapshot) RateView {
	return RateView{
		Base:          s.Base,
		Target:        s.Target,
		CurrentRate:   s.CurrentRate,
		PredictedRate: s.PredictedRate,
		Confidence:    s.Confidence,
		Degenerate:    s.Degenerate,
		Curve:         s.Curve,
	}
}

func moneySeries(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = cli.Money(v)
	}
	return out
}

func planResponse(p *model.Plan) PlanResponse {
	res := p.Result
	suggestions := p.Suggestions
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	return PlanResponse{
		PlanSummary:             summarize(p),
		Inputs:                  p.Inputs,
		MonthlyContributionGoal: cli.Money(res.MonthlyContributionGoal),
		PresentValueGoal:        cli.Money(res.PresentValueGoal),
		TotalContributed:        cli.Money(res.TotalContributed),
		TrajectoryGoal:          moneySeries(res.TrajectoryGoal),
		TrajectoryMonthly:       moneySeries(res.TrajectoryMonthly),
		FX: map[string]RateView{
			"initial_to_goal":    rateView(p.FX.InitialToGoal),
			"monthly_to_goal":    rateView(p.FX.MonthlyToGoal),
			"monthly_to_initial": rateView(p.FX.MonthlyToInitial),
		},
		Suggestions: suggestions,
	}
}

func currencyViews() []CurrencyView {
	out := make([]CurrencyView, len(config.Currencies))
	for i, c := range config.Currencies {
		out[i] = CurrencyView{Code: c.Code, Name: c.Name, Symbol: c.Symbol}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorBody{Error: msg, Retryable: retryable})
}
