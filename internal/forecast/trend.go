// Package forecast fits trends to historical exchange rates and projects them forward.
package forecast

import (
	"errors"
	"math"

	"github.com/theirongolddev/goalplan/internal/model"
)

// WeeklyStep is the decimation step that turns daily samples into weekly ones.
const WeeklyStep = 7

// confidenceEpsilon keeps Confidence finite when the intercept is zero.
const confidenceEpsilon = 1e-8

// ErrDegenerateTrend is returned when fewer than two samples are available.
// The accompanying model is a usable zero-slope fallback.
var ErrDegenerateTrend = errors.New("forecast: fewer than 2 samples, trend is degenerate")

// Decimate keeps every step-th sample starting with the first.
func Decimate(samples []model.RateSample, step int) []model.RateSample {
	if step <= 1 {
		out := make([]model.RateSample, len(samples))
		copy(out, samples)
		return out
	}
	out := make([]model.RateSample, 0, len(samples)/step+1)
	for i := 0; i < len(samples); i += step {
		out = append(out, samples[i])
	}
	return out
}

// EstimateTrend fits rate = slope*i + intercept by ordinary least squares over
// i = 0..n-1.
//
// With fewer than two samples it returns ErrDegenerateTrend and a model with
// zero slope and zero residual whose intercept is the only sample's rate (or 0).
func EstimateTrend(samples []model.RateSample) (model.TrendModel, error) {
	n := len(samples)
	if n <= 1 {
		tm := model.TrendModel{SampleCount: n}
		if n == 1 {
			tm.Intercept = samples[0].Rate
		}
		return tm, ErrDegenerateTrend
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, s := range samples {
		x := float64(i)
		sumX += x
		sumY += s.Rate
		sumXY += x * s.Rate
		sumXX += x * x
	}

	fn := float64(n)
	// Indices are distinct, so the denominator is strictly positive for n >= 2.
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	var residual float64
	for i, s := range samples {
		residual += math.Abs(s.Rate - (slope*float64(i) + intercept))
	}

	return model.TrendModel{
		Slope:           slope,
		Intercept:       intercept,
		MeanAbsResidual: residual / fn,
		SampleCount:     n,
	}, nil
}

// Confidence maps the residual-to-intercept ratio onto [0, 1].
func Confidence(tm model.TrendModel) float64 {
	c := 1 - tm.MeanAbsResidual/(math.Abs(tm.Intercept)+confidenceEpsilon)
	return math.Max(0, math.Min(1, c))
}
