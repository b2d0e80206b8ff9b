// Package planner solves and projects goal-funding plans and derives advice from them.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/forecast"
	"github.com/theirongolddev/goalplan/internal/model"
)

const (
	defaultFetchTimeout = 12 * time.Second
	defaultWindowMonths = 6
)

// Options controls a Planner.
type Options struct {
	// WindowMonths is the trailing history window used for trend fitting.
	WindowMonths int
	// FetchTimeout bounds the whole fetch phase of one request.
	FetchTimeout time.Duration
	Advisor      config.AdvisorConfig
}

// Planner runs planning requests against a rate source.
type Planner struct {
	src  forecast.RateSource
	opts Options
	now  func() time.Time
}

// New returns a planner reading rates from src.
func New(src forecast.RateSource, opts Options) *Planner {
	if opts.WindowMonths < 1 {
		opts.WindowMonths = defaultWindowMonths
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Planner{src: src, opts: opts, now: time.Now}
}

// Validate checks inputs before any rate is fetched.
func Validate(in model.PlanInputs) error {
	var problems []string

	if !finite(in.GoalAmount) || in.GoalAmount < 0 {
		problems = append(problems, "goal amount must be a non-negative number")
	}
	if in.HorizonMonths < 1 {
		problems = append(problems, "horizon must be at least 1 month")
	}
	if !finite(in.InitialInvestment) || in.InitialInvestment < 0 {
		problems = append(problems, "initial investment must be a non-negative number")
	}
	if !finite(in.AnnualRatePercent) || in.MonthlyRate() <= -1 {
		problems = append(problems, "annual return must be a number above -1200%")
	}
	for _, c := range []model.Currency{in.InitialCurrency, in.MonthlyCurrency, in.GoalCurrency} {
		if !config.IsSupported(c) {
			problems = append(problems, fmt.Sprintf("unsupported currency %q", c))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlanInputs, strings.Join(problems, "; "))
	}
	return nil
}

// Plan validates inputs, fetches every needed rate under one deadline, then
// solves, projects and advises. Nothing partial is returned on failure.
func (p *Planner) Plan(ctx context.Context, in model.PlanInputs) (*model.Plan, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	fx, err := p.fetch(ctx, in)
	if err != nil {
		return nil, err
	}

	res, suggestions, err := Compute(in, fx, p.opts.Advisor)
	if err != nil {
		return nil, err
	}

	return &model.Plan{
		ID:          uuid.NewString(),
		CreatedAt:   p.now().UTC(),
		Inputs:      in,
		FX:          fx,
		Result:      res,
		Suggestions: suggestions,
	}, nil
}

// fetch runs all rate lookups concurrently. Any failure, or the deadline,
// aborts the request with a single ErrRateUnavailable.
func (p *Planner) fetch(ctx context.Context, in model.PlanInputs) (model.FxSet, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()

	var fx model.FxSet
	n, window := in.HorizonMonths, p.opts.WindowMonths

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := forecast.Snapshot(gctx, p.src, in.InitialCurrency, in.GoalCurrency, n, window)
		fx.InitialToGoal = s
		return err
	})
	g.Go(func() error {
		s, err := forecast.Snapshot(gctx, p.src, in.MonthlyCurrency, in.GoalCurrency, n, window)
		fx.MonthlyToGoal = s
		return err
	})
	g.Go(func() error {
		s, err := forecast.Snapshot(gctx, p.src, in.MonthlyCurrency, in.InitialCurrency, n, window)
		fx.MonthlyToInitial = s
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.FxSet{}, fmt.Errorf("%w: timed out after %s", ErrRateUnavailable, p.opts.FetchTimeout)
		}
		return model.FxSet{}, fmt.Errorf("%w: %w", ErrRateUnavailable, err)
	}
	return fx, nil
}

// Compute solves and projects a plan from already-fetched conversion data.
// PV is converted into the goal currency at the current rate; the solved
// goal-currency contribution is divided by the mean monthly->goal forecast.
func Compute(in model.PlanInputs, fx model.FxSet, th config.AdvisorConfig) (model.PlanResult, []model.Suggestion, error) {
	r := in.MonthlyRate()
	n := in.HorizonMonths

	pv := in.InitialInvestment
	if in.InitialCurrency != in.GoalCurrency {
		pv *= fx.InitialToGoal.CurrentRate
	}

	monthlyGoal, err := SolveMonthly(pv, in.GoalAmount, r, n)
	if err != nil {
		return model.PlanResult{}, nil, err
	}

	avg := fx.MonthlyToGoal.Curve.Mean(n)
	if avg <= 0 || !finite(avg) {
		return model.PlanResult{}, nil, fmt.Errorf("%w: average forecast rate %.6g is not positive", ErrInvalidPlanInputs, avg)
	}
	monthly := monthlyGoal / avg
	if !finite(monthly) {
		return model.PlanResult{}, nil, fmt.Errorf("%w: monthly contribution is not finite", ErrInvalidPlanInputs)
	}

	proj, err := Project(pv, monthly, r, fx.MonthlyToGoal.Curve, n)
	if err != nil {
		return model.PlanResult{}, nil, err
	}

	res := model.PlanResult{
		MonthlyContribution:     monthly,
		MonthlyContributionGoal: monthlyGoal,
		PresentValueGoal:        pv,
		TrajectoryGoal:          proj.Goal,
		TrajectoryMonthly:       proj.Monthly,
		FinalProjectedValue:     proj.Final(),
		TotalContributed:        monthly * float64(n),
	}
	return res, Advise(in, fx, res, th), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
