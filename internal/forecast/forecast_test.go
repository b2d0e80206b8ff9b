package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/theirongolddev/goalplan/internal/model"
)

type fakeSource struct {
	current    float64
	history    []model.RateSample
	currentErr error
	historyErr error
	calls      int
}

func (f *fakeSource) CurrentRate(_ context.Context, _, _ model.Currency) (float64, error) {
	f.calls++
	return f.current, f.currentErr
}

func (f *fakeSource) HistoricalRates(_ context.Context, _, _ model.Currency, _ int) ([]model.RateSample, error) {
	f.calls++
	return f.history, f.historyErr
}

func TestCurve_WeekIndexFormula(t *testing.T) {
	tm := model.TrendModel{Slope: 0.1, Intercept: 2}
	curve := Curve(tm, 9)
	if len(curve) != 9 {
		t.Fatalf("len = %d, want 9", len(curve))
	}

	// months 1-3 -> week 0, 4-7 -> week 1, 8-9 -> week 2
	wantWeek := []float64{0, 0, 0, 1, 1, 1, 1, 2, 2}
	for i, w := range wantWeek {
		want := 0.1*(2+w) + 2
		if !approx(curve[i], want, 1e-12) {
			t.Errorf("curve[%d] = %v, want %v", i, curve[i], want)
		}
	}
}

func TestPredictedRate_IndependentOfCurve(t *testing.T) {
	tm := model.TrendModel{Slope: 0.01, Intercept: 1.2, SampleCount: 26}
	got := PredictedRate(tm, 10)
	want := 0.01*float64(26+2) + 1.2
	if !approx(got, want, 1e-12) {
		t.Errorf("PredictedRate = %v, want %v", got, want)
	}
}

func TestSnapshot_SameCurrencyIsIdentity(t *testing.T) {
	src := &fakeSource{currentErr: errors.New("must not be called")}
	snap, err := Snapshot(context.Background(), src, "EUR", "EUR", 5, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times, want 0", src.calls)
	}
	if snap.CurrentRate != 1 || snap.PredictedRate != 1 || snap.Confidence != 1 {
		t.Errorf("snapshot = %+v, want current=predicted=confidence=1", snap)
	}
	if len(snap.Curve) != 5 {
		t.Fatalf("curve len = %d, want 5", len(snap.Curve))
	}
	for i, v := range snap.Curve {
		if v != 1 {
			t.Errorf("curve[%d] = %v, want 1", i, v)
		}
	}
}

func TestSnapshot_FitsWeeklySamples(t *testing.T) {
	// 22 daily samples -> weekly indices 0,7,14,21 with rates 1.0,1.07,1.14,1.21
	rates := make([]float64, 22)
	for i := range rates {
		rates[i] = 1 + 0.01*float64(i)
	}
	src := &fakeSource{current: 1.25, history: series(rates...)}

	snap, err := Snapshot(context.Background(), src, "USD", "EUR", 8, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.History) != 4 {
		t.Fatalf("weekly samples = %d, want 4", len(snap.History))
	}
	if !approx(snap.Confidence, 1, 1e-9) {
		t.Errorf("Confidence = %v, want 1 for a perfect line", snap.Confidence)
	}
	// slope 0.07 per weekly index, intercept 1.0, 4 samples, horizon 8 -> index 6
	if !approx(snap.PredictedRate, 0.07*6+1.0, 1e-9) {
		t.Errorf("PredictedRate = %v, want %v", snap.PredictedRate, 0.07*6+1.0)
	}
	if snap.CurrentRate != 1.25 {
		t.Errorf("CurrentRate = %v, want 1.25", snap.CurrentRate)
	}
}

func TestSnapshot_DegenerateFallsBackToCurrent(t *testing.T) {
	src := &fakeSource{current: 56.2}
	snap, err := Snapshot(context.Background(), src, "USD", "PHP", 3, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Degenerate {
		t.Error("Degenerate = false, want true")
	}
	if snap.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", snap.Confidence)
	}
	for i, v := range snap.Curve {
		if v != 56.2 {
			t.Errorf("curve[%d] = %v, want flat 56.2", i, v)
		}
	}
	if snap.PredictedRate != 56.2 {
		t.Errorf("PredictedRate = %v, want 56.2", snap.PredictedRate)
	}
}

func TestSnapshot_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{current: 1, historyErr: boom}
	if _, err := Snapshot(context.Background(), src, "USD", "EUR", 3, 6); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}
