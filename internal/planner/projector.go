package planner

import (
	"fmt"
	"math"

	"github.com/theirongolddev/goalplan/internal/model"
)

// Projection is the month-by-month balance walk.
type Projection struct {
	Goal    []float64
	Monthly []float64
}

// Final returns the last goal-currency balance, or 0 for an empty projection.
func (p Projection) Final() float64 {
	if len(p.Goal) == 0 {
		return 0
	}
	return p.Goal[len(p.Goal)-1]
}

// Project walks the balance forward n months. Each month the balance grows by r
// and receives monthly (in the monthly currency) converted with curve[i-1].
// The walk is an in-order fold because the curve varies per month.
func Project(pvGoal, monthly, r float64, curve model.ForecastCurve, n int) (Projection, error) {
	if n < 1 {
		return Projection{}, fmt.Errorf("%w: horizon must be at least 1 month, got %d", ErrInvalidPlanInputs, n)
	}
	if len(curve) < n {
		return Projection{}, fmt.Errorf("%w: forecast covers %d of %d months", ErrInvalidPlanInputs, len(curve), n)
	}

	p := Projection{
		Goal:    make([]float64, 0, n),
		Monthly: make([]float64, 0, n),
	}

	balance := pvGoal
	for i := 1; i <= n; i++ {
		fx := curve[i-1]
		if fx <= 0 || math.IsNaN(fx) || math.IsInf(fx, 0) {
			return Projection{}, fmt.Errorf("%w: forecast rate %.6g at month %d is not positive", ErrInvalidPlanInputs, fx, i)
		}
		balance = balance*(1+r) + monthly*fx
		p.Goal = append(p.Goal, balance)
		p.Monthly = append(p.Monthly, balance/fx)
	}

	if math.IsNaN(balance) || math.IsInf(balance, 0) {
		return Projection{}, fmt.Errorf("%w: projected balance is not finite", ErrInvalidPlanInputs)
	}
	return p, nil
}
