// Package model defines the data types shared by the forecasting and planning packages.
package model

import "time"

// Currency is an ISO 4217 currency code such as "EUR".
type Currency string

// RateSample is one historical exchange rate observation.
type RateSample struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// TrendModel is a least-squares line fitted to an index-vs-rate series.
type TrendModel struct {
	Slope           float64 `json:"slope"`
	Intercept       float64 `json:"intercept"`
	MeanAbsResidual float64 `json:"mean_abs_residual"`
	SampleCount     int     `json:"sample_count"`
}

// ForecastCurve holds one predicted rate per month; index i is month i+1.
type ForecastCurve []float64

// Mean returns the arithmetic mean of the first n entries (all entries if n
// exceeds the length). It returns 0 for an empty curve.
func (c ForecastCurve) Mean(n int) float64 {
	if n > len(c) {
		n = len(c)
	}
	if n <= 0 {
		return 0
	}
	var sum float64
	for _, v := range c[:n] {
		sum += v
	}
	return sum / float64(n)
}

// FxSnapshot is the conversion data for one currency pair over a planning horizon.
// Rates are quoted as units of Target per one unit of Base.
type FxSnapshot struct {
	Base          Currency      `json:"base"`
	Target        Currency      `json:"target"`
	CurrentRate   float64       `json:"current_rate"`
	PredictedRate float64       `json:"predicted_rate"`
	Confidence    float64       `json:"confidence"`
	Curve         ForecastCurve `json:"curve"`

	// History is the decimated series the trend was fitted to.
	History    []RateSample `json:"history,omitempty"`
	Degenerate bool         `json:"degenerate,omitempty"`
}

// Identity reports whether the snapshot converts a currency to itself.
func (s FxSnapshot) Identity() bool {
	return s.Base == s.Target
}

// IdentitySnapshot returns the trivial snapshot for base == target.
func IdentitySnapshot(c Currency, months int) FxSnapshot {
	curve := make(ForecastCurve, months)
	for i := range curve {
		curve[i] = 1
	}
	return FxSnapshot{
		Base:          c,
		Target:        c,
		CurrentRate:   1,
		PredictedRate: 1,
		Confidence:    1,
		Curve:         curve,
	}
}
