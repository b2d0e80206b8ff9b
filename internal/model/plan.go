package model

import "time"

// PlanInputs holds the user-supplied parameters of a funding goal.
type PlanInputs struct {
	GoalAmount        float64  `json:"goal_amount"`
	HorizonMonths     int      `json:"horizon_months"`
	AnnualRatePercent float64  `json:"annual_rate_percent"`
	InitialInvestment float64  `json:"initial_investment"`
	InitialCurrency   Currency `json:"initial_currency"`
	MonthlyCurrency   Currency `json:"monthly_currency"`
	GoalCurrency      Currency `json:"goal_currency"`
}

// MonthlyRate returns the per-period interest rate (annual percent / 100 / 12).
func (in PlanInputs) MonthlyRate() float64 {
	return in.AnnualRatePercent / 100 / 12
}

// SingleCurrency reports whether no conversion is needed anywhere in the plan.
func (in PlanInputs) SingleCurrency() bool {
	return in.InitialCurrency == in.GoalCurrency && in.MonthlyCurrency == in.GoalCurrency
}

// FxSet groups the three conversions a plan may need.
type FxSet struct {
	InitialToGoal    FxSnapshot `json:"initial_to_goal"`
	MonthlyToGoal    FxSnapshot `json:"monthly_to_goal"`
	MonthlyToInitial FxSnapshot `json:"monthly_to_initial"`
}

// PlanResult is the solved and projected plan.
type PlanResult struct {
	// MonthlyContribution is denominated in the monthly currency.
	MonthlyContribution float64 `json:"monthly_contribution"`
	// MonthlyContributionGoal is the solved contribution in the goal currency.
	MonthlyContributionGoal float64 `json:"monthly_contribution_goal"`
	// PresentValueGoal is the initial investment converted to the goal currency.
	PresentValueGoal float64 `json:"present_value_goal"`

	TrajectoryGoal      []float64 `json:"trajectory_goal"`
	TrajectoryMonthly   []float64 `json:"trajectory_monthly"`
	FinalProjectedValue float64   `json:"final_projected_value"`
	// TotalContributed is monthly contribution times horizon, in the monthly currency.
	TotalContributed float64 `json:"total_contributed"`
}

// SuggestionKind identifies an advisor rule.
type SuggestionKind string

const (
	SuggestLowConfidence     SuggestionKind = "low_confidence"
	SuggestExtendHorizon     SuggestionKind = "extend_horizon"
	SuggestShortfall         SuggestionKind = "shortfall"
	SuggestAlternateCurrency SuggestionKind = "alternate_currency"
	SuggestLooksSolid        SuggestionKind = "looks_solid"
)

// Suggestion is one piece of non-binding advice about a plan.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Message string         `json:"message"`
	// Currency is set for alternate-currency hints.
	Currency Currency `json:"currency,omitempty"`
	// Months is set for horizon extension hints.
	Months int `json:"months,omitempty"`
}

// IsWarning reports whether the suggestion flags a problem with the plan.
func (s Suggestion) IsWarning() bool {
	return s.Kind != SuggestLooksSolid
}

// Plan is a complete planning request outcome.
type Plan struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Inputs      PlanInputs   `json:"inputs"`
	FX          FxSet        `json:"fx"`
	Result      PlanResult   `json:"result"`
	Suggestions []Suggestion `json:"suggestions"`
}
