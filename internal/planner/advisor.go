package planner

import (
	"fmt"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
)

// costEpsilon is the relative margin below which two goal-currency costs are
// treated as equal.
const costEpsilon = 1e-9

// Advise derives suggestions for a solved plan. Rules are evaluated in a fixed
// order; the affirmation is emitted only when no other rule fires.
func Advise(in model.PlanInputs, fx model.FxSet, res model.PlanResult, th config.AdvisorConfig) []model.Suggestion {
	var out []model.Suggestion

	if in.MonthlyCurrency != in.GoalCurrency && fx.MonthlyToGoal.Confidence < th.LowConfidence {
		out = append(out, model.Suggestion{
			Kind: model.SuggestLowConfidence,
			Message: fmt.Sprintf("Currency prediction confidence is low for your monthly contribution. "+
				"Consider contributing in your goal currency (%s) for more certainty.", in.GoalCurrency),
			Currency: in.GoalCurrency,
		})
	}

	if res.MonthlyContribution > in.InitialInvestment*th.ContributionShare {
		months := in.HorizonMonths + th.HorizonExtensionMonths
		out = append(out, model.Suggestion{
			Kind: model.SuggestExtendHorizon,
			Message: fmt.Sprintf("Consider increasing your investment period. For example, spreading your goal "+
				"over %d months could reduce your monthly investment.", months),
			Months: months,
		})
	}

	if res.FinalProjectedValue < in.GoalAmount*(1-th.ShortfallTolerance) {
		out = append(out, model.Suggestion{
			Kind: model.SuggestShortfall,
			Message: "Due to the predicted exchange rate, your final withdrawal may fall short of your goal. " +
				"Consider increasing your monthly investment or choosing a different contribution currency.",
		})
	}

	if th.CompareCurrencies {
		if best, ok := cheaperCurrency(in, fx, res); ok {
			out = append(out, model.Suggestion{
				Kind: model.SuggestAlternateCurrency,
				Message: fmt.Sprintf("Based on current rates, contributing in %s may reduce your "+
					"required monthly investment.", best),
				Currency: best,
			})
		}
	}

	if len(out) == 0 {
		out = append(out, model.Suggestion{
			Kind:    model.SuggestLooksSolid,
			Message: "Your plan looks solid! Stay consistent with your investments to reach your goal.",
		})
	}
	return out
}

// cheaperCurrency compares what the plan's contribution is worth in the goal
// currency at today's rate against the goal-currency contribution the solver
// needs. Any currency paid in at today's rate costs the latter, so the goal
// currency, which carries no conversion risk, is the one suggested.
func cheaperCurrency(in model.PlanInputs, fx model.FxSet, res model.PlanResult) (model.Currency, bool) {
	if in.MonthlyCurrency == in.GoalCurrency || res.MonthlyContributionGoal <= 0 {
		return "", false
	}
	rate := fx.MonthlyToGoal.CurrentRate
	if rate <= 0 || !finite(rate) {
		return "", false
	}

	planCost := res.MonthlyContribution * rate
	if res.MonthlyContributionGoal < planCost*(1-costEpsilon) {
		return in.GoalCurrency, true
	}
	return "", false
}
