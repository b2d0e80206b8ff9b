package planner

import (
	"fmt"
	"math"
)

// SolveMonthly returns the fixed end-of-month payment that grows pv into fv
// over n periods at per-period rate r.
//
//	r != 0: (fv - pv*(1+r)^n) * r / ((1+r)^n - 1)
//	r == 0: (fv - pv) / n
//
// Negative rates above -100% use the annuity form so the result agrees with
// Project.
func SolveMonthly(pv, fv, r float64, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: horizon must be at least 1 month, got %d", ErrInvalidPlanInputs, n)
	}
	if r <= -1 {
		return 0, fmt.Errorf("%w: monthly rate %.6f is at or below -100%%", ErrInvalidPlanInputs, r)
	}

	var monthly float64
	if r == 0 {
		monthly = (fv - pv) / float64(n)
	} else {
		growth := math.Pow(1+r, float64(n))
		denom := growth - 1
		if denom == 0 {
			return 0, fmt.Errorf("%w: rate %.3g too small to compound over %d months", ErrInvalidPlanInputs, r, n)
		}
		monthly = (fv - pv*growth) * r / denom
	}

	if math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		return 0, fmt.Errorf("%w: solved contribution is not finite", ErrInvalidPlanInputs)
	}
	return monthly, nil
}

// FutureValue is the closed-form balance after n end-of-month payments.
// Only valid for a constant conversion rate.
func FutureValue(pv, monthly, r float64, n int) float64 {
	if r == 0 {
		return pv + monthly*float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return pv*growth + monthly*(growth-1)/r
}
