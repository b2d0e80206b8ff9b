package planner

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
)

// mapSource serves fixed spot rates keyed by "BASE/TARGET" and no history.
type mapSource struct {
	mu    sync.Mutex
	rates map[string]float64
	err   error
	calls int
}

func (s *mapSource) CurrentRate(_ context.Context, base, target model.Currency) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if base == target {
		return 1, nil
	}
	r, ok := s.rates[string(base)+"/"+string(target)]
	if !ok {
		return 0, errors.New("no rate for " + string(base) + "/" + string(target))
	}
	return r, nil
}

func (s *mapSource) HistoricalRates(_ context.Context, _, _ model.Currency, _ int) ([]model.RateSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil, s.err
}

// blockingSource never answers until its context ends.
type blockingSource struct{}

func (blockingSource) CurrentRate(ctx context.Context, _, _ model.Currency) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (blockingSource) HistoricalRates(ctx context.Context, _, _ model.Currency, _ int) ([]model.RateSample, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func validInputs() model.PlanInputs {
	return model.PlanInputs{
		GoalAmount:        100000,
		HorizonMonths:     60,
		AnnualRatePercent: 8,
		InitialInvestment: 10000,
		InitialCurrency:   "EUR",
		MonthlyCurrency:   "EUR",
		GoalCurrency:      "EUR",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PlanInputs)
		ok     bool
	}{
		{"valid", func(*model.PlanInputs) {}, true},
		{"zero goal", func(in *model.PlanInputs) { in.GoalAmount = 0 }, true},
		{"negative return", func(in *model.PlanInputs) { in.AnnualRatePercent = -5 }, true},
		{"negative goal", func(in *model.PlanInputs) { in.GoalAmount = -1 }, false},
		{"nan goal", func(in *model.PlanInputs) { in.GoalAmount = math.NaN() }, false},
		{"zero horizon", func(in *model.PlanInputs) { in.HorizonMonths = 0 }, false},
		{"negative initial", func(in *model.PlanInputs) { in.InitialInvestment = -10 }, false},
		{"infinite initial", func(in *model.PlanInputs) { in.InitialInvestment = math.Inf(1) }, false},
		{"return at -1200%", func(in *model.PlanInputs) { in.AnnualRatePercent = -1200 }, false},
		{"unsupported goal currency", func(in *model.PlanInputs) { in.GoalCurrency = "JPY" }, false},
		{"empty monthly currency", func(in *model.PlanInputs) { in.MonthlyCurrency = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			tt.mutate(&in)
			err := Validate(in)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidPlanInputs) {
				t.Fatalf("err = %v, want ErrInvalidPlanInputs", err)
			}
		})
	}
}

func TestPlan_SingleCurrency(t *testing.T) {
	src := &mapSource{rates: map[string]float64{
		"USD/EUR": 0.9,
		"INR/EUR": 0.011,
		"GBP/EUR": 1.15,
		"PHP/EUR": 0.016,
	}}
	p := New(src, Options{Advisor: config.DefaultAdvisor()})

	plan, err := p.Plan(context.Background(), validInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := SolveMonthly(10000, 100000, 0.08/12, 60)
	if !relClose(plan.Result.MonthlyContribution, want, 1e-12) {
		t.Errorf("MonthlyContribution = %v, want %v", plan.Result.MonthlyContribution, want)
	}
	if plan.Result.MonthlyContribution != plan.Result.MonthlyContributionGoal {
		t.Errorf("monthly %v != goal-currency monthly %v", plan.Result.MonthlyContribution, plan.Result.MonthlyContributionGoal)
	}
	if !relClose(plan.Result.FinalProjectedValue, 100000, 1e-9) {
		t.Errorf("FinalProjectedValue = %v, want 100000", plan.Result.FinalProjectedValue)
	}
	if !relClose(plan.Result.TotalContributed, want*60, 1e-12) {
		t.Errorf("TotalContributed = %v, want %v", plan.Result.TotalContributed, want*60)
	}
	if len(plan.Result.TrajectoryGoal) != 60 {
		t.Errorf("trajectory len = %d, want 60", len(plan.Result.TrajectoryGoal))
	}
	if plan.ID == "" || plan.CreatedAt.IsZero() {
		t.Errorf("plan missing identity: id=%q created=%v", plan.ID, plan.CreatedAt)
	}
	if len(plan.Suggestions) == 0 {
		t.Error("no suggestions")
	}
}

func TestPlan_ConvertsThroughForecast(t *testing.T) {
	src := &mapSource{rates: map[string]float64{
		"USD/EUR": 0.9,
		"INR/EUR": 0.011,
		"USD/INR": 83,
		"GBP/EUR": 1.15,
		"PHP/EUR": 0.016,
	}}
	p := New(src, Options{Advisor: config.DefaultAdvisor()})

	in := validInputs()
	in.InitialCurrency = "INR"
	in.InitialInvestment = 500000
	in.MonthlyCurrency = "USD"

	plan, err := p.Plan(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pv := 500000 * 0.011
	if !relClose(plan.Result.PresentValueGoal, pv, 1e-12) {
		t.Errorf("PresentValueGoal = %v, want %v", plan.Result.PresentValueGoal, pv)
	}
	goalMonthly, _ := SolveMonthly(pv, 100000, 0.08/12, 60)
	// no history -> flat curve at the spot rate
	if !relClose(plan.Result.MonthlyContribution, goalMonthly/0.9, 1e-12) {
		t.Errorf("MonthlyContribution = %v, want %v", plan.Result.MonthlyContribution, goalMonthly/0.9)
	}
	if !plan.FX.MonthlyToGoal.Degenerate {
		t.Error("MonthlyToGoal.Degenerate = false, want true without history")
	}
	if !relClose(plan.Result.FinalProjectedValue, 100000, 1e-9) {
		t.Errorf("FinalProjectedValue = %v, want 100000", plan.Result.FinalProjectedValue)
	}
	if plan.Suggestions[0].Kind != model.SuggestLowConfidence {
		t.Errorf("first suggestion = %s, want low_confidence for a degenerate forecast", plan.Suggestions[0].Kind)
	}
}

func TestPlan_InvalidInputsSkipFetch(t *testing.T) {
	src := &mapSource{}
	p := New(src, Options{Advisor: config.DefaultAdvisor()})

	in := validInputs()
	in.HorizonMonths = 0
	if _, err := p.Plan(context.Background(), in); !errors.Is(err, ErrInvalidPlanInputs) {
		t.Fatalf("err = %v, want ErrInvalidPlanInputs", err)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times, want 0", src.calls)
	}
}

func TestPlan_SourceFailureIsRateUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	src := &mapSource{err: boom}
	p := New(src, Options{Advisor: config.DefaultAdvisor()})

	in := validInputs()
	in.MonthlyCurrency = "USD"

	_, err := p.Plan(context.Background(), in)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("err = %v, want ErrRateUnavailable", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want cause preserved", err)
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable = false, want true")
	}
}

func TestPlan_Timeout(t *testing.T) {
	p := New(blockingSource{}, Options{FetchTimeout: 20 * time.Millisecond})

	in := validInputs()
	in.MonthlyCurrency = "USD"

	start := time.Now()
	_, err := p.Plan(context.Background(), in)
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("err = %v, want ErrRateUnavailable", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout message", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Plan took %s, want prompt abort", elapsed)
	}
}

func TestCompute_RejectsNonPositiveForecast(t *testing.T) {
	in := validInputs()
	in.MonthlyCurrency = "USD"
	fx := model.FxSet{
		InitialToGoal:    model.IdentitySnapshot("EUR", 60),
		MonthlyToGoal:    model.FxSnapshot{Base: "USD", Target: "EUR", CurrentRate: 0.9, Curve: flatCurve(-0.1, 60)},
		MonthlyToInitial: model.FxSnapshot{Base: "USD", Target: "EUR", CurrentRate: 0.9, Curve: flatCurve(0.9, 60)},
	}

	if _, _, err := Compute(in, fx, config.DefaultAdvisor()); !errors.Is(err, ErrInvalidPlanInputs) {
		t.Fatalf("err = %v, want ErrInvalidPlanInputs", err)
	}
}
