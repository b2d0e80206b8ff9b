package cli

import (
	"math"
	"testing"

	"github.com/theirongolddev/goalplan/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		cur    model.Currency
		want   string
	}{
		{1234.5, "EUR", "€1,234.50"},
		{0, "USD", "$0.00"},
		{-3, "USD", "-$3.00"},
		{1158.2088192905799, "EUR", "€1,158.21"},
		{999.995, "GBP", "£1,000.00"},
		{1_000_000, "INR", "₹1,000,000.00"},
		{12.3, "XYZ", "XYZ 12.30"},
		{math.NaN(), "EUR", "€0.00"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.cur); got != tt.want {
			t.Errorf("FormatMoney(%v, %s) = %q, want %q", tt.amount, tt.cur, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.2K"},
		{1234567, "1.2M"},
		{-2500000, "-2.5M"},
		{3_100_000_000, "3.1B"},
	}

	for _, tt := range tests {
		if got := FormatCompact(tt.v); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{0, "0"},
		{0.011234567, "0.0112"},
		{0.0061234567, "0.006123"},
		{0.8571, "0.8571"},
		{83.456, "83.46"},
	}

	for _, tt := range tests {
		if got := FormatRate(tt.r); got != tt.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestFormatHorizon(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{0, "0m"},
		{8, "8m"},
		{12, "1y"},
		{26, "2y 2m"},
		{60, "5y"},
	}

	for _, tt := range tests {
		if got := FormatHorizon(tt.months); got != tt.want {
			t.Errorf("FormatHorizon(%d) = %q, want %q", tt.months, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(100010, 100000, "EUR"); got != "+€10.00" {
		t.Errorf("FormatDelta over = %q", got)
	}
	if got := FormatDelta(99000, 100000, "EUR"); got != "-€1,000.00" {
		t.Errorf("FormatDelta under = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.6); got != "60.0%" {
		t.Errorf("FormatPercent(0.6) = %q", got)
	}
}
