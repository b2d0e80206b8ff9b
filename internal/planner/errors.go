package planner

import "errors"

var (
	// ErrInvalidPlanInputs indicates inputs that cannot produce a finite plan.
	ErrInvalidPlanInputs = errors.New("planner: invalid plan inputs")
	// ErrRateUnavailable indicates the rate source failed or timed out. Retryable.
	ErrRateUnavailable = errors.New("planner: exchange rates unavailable")
)

// IsRetryable reports whether retrying the same request may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateUnavailable)
}
