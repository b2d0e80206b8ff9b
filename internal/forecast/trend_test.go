package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/goalplan/internal/model"
)

func series(rates ...float64) []model.RateSample {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.RateSample, len(rates))
	for i, r := range rates {
		out[i] = model.RateSample{Date: start.AddDate(0, 0, i), Rate: r}
	}
	return out
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEstimateTrend_PerfectLine(t *testing.T) {
	// rate = 0.5*i + 2
	tm, err := EstimateTrend(series(2, 2.5, 3, 3.5, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(tm.Slope, 0.5, 1e-12) {
		t.Errorf("Slope = %v, want 0.5", tm.Slope)
	}
	if !approx(tm.Intercept, 2, 1e-12) {
		t.Errorf("Intercept = %v, want 2", tm.Intercept)
	}
	if !approx(tm.MeanAbsResidual, 0, 1e-12) {
		t.Errorf("MeanAbsResidual = %v, want 0", tm.MeanAbsResidual)
	}
	if tm.SampleCount != 5 {
		t.Errorf("SampleCount = %d, want 5", tm.SampleCount)
	}
	if c := Confidence(tm); !approx(c, 1, 1e-9) {
		t.Errorf("Confidence = %v, want 1", c)
	}
}

func TestEstimateTrend_Residual(t *testing.T) {
	// Points (0,1) (1,3) (2,2): slope 0.5, intercept 1.5, residuals 0.5, 1, 0.5.
	tm, err := EstimateTrend(series(1, 3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(tm.Slope, 0.5, 1e-12) || !approx(tm.Intercept, 1.5, 1e-12) {
		t.Fatalf("fit = (%v, %v), want (0.5, 1.5)", tm.Slope, tm.Intercept)
	}
	if !approx(tm.MeanAbsResidual, 2.0/3.0, 1e-12) {
		t.Errorf("MeanAbsResidual = %v, want 2/3", tm.MeanAbsResidual)
	}
	want := 1 - (2.0/3.0)/(1.5+1e-8)
	if c := Confidence(tm); !approx(c, want, 1e-12) {
		t.Errorf("Confidence = %v, want %v", c, want)
	}
}

func TestEstimateTrend_Degenerate(t *testing.T) {
	tm, err := EstimateTrend(nil)
	if !errors.Is(err, ErrDegenerateTrend) {
		t.Fatalf("err = %v, want ErrDegenerateTrend", err)
	}
	if tm.Slope != 0 || tm.Intercept != 0 || tm.MeanAbsResidual != 0 {
		t.Errorf("empty fallback = %+v, want zero model", tm)
	}

	tm, err = EstimateTrend(series(83.1))
	if !errors.Is(err, ErrDegenerateTrend) {
		t.Fatalf("err = %v, want ErrDegenerateTrend", err)
	}
	if tm.Slope != 0 || tm.Intercept != 83.1 || tm.SampleCount != 1 {
		t.Errorf("single-sample fallback = %+v, want slope 0 intercept 83.1", tm)
	}
}

func TestConfidence_Clamped(t *testing.T) {
	if c := Confidence(model.TrendModel{Intercept: 1, MeanAbsResidual: 5}); c != 0 {
		t.Errorf("Confidence = %v, want 0 for residual larger than intercept", c)
	}
	if c := Confidence(model.TrendModel{}); c < 0 || c > 1 {
		t.Errorf("Confidence = %v, want within [0,1] for zero intercept", c)
	}
}

func TestDecimate(t *testing.T) {
	in := series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)
	out := Decimate(in, WeeklyStep)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, want := range []float64{0, 7, 14} {
		if out[i].Rate != want {
			t.Errorf("out[%d].Rate = %v, want %v", i, out[i].Rate, want)
		}
	}

	if got := Decimate(nil, WeeklyStep); len(got) != 0 {
		t.Errorf("Decimate(nil) len = %d, want 0", len(got))
	}
}
