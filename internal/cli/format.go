// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/goalplan/internal/config"
	"github.com/theirongolddev/goalplan/internal/model"
)

// Money rounds a float amount to cents.
func Money(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).Round(2)
}

// FormatMoney formats an amount with the currency symbol and comma separators.
// e.g., (1234.5, "EUR") -> "€1,234.50", (-3, "USD") -> "-$3.00"
func FormatMoney(amount float64, c model.Currency) string {
	s := FormatAmount(amount)
	if rest, neg := strings.CutPrefix(s, "-"); neg {
		return "-" + symbolFor(c) + rest
	}
	return symbolFor(c) + s
}

// FormatAmount formats an amount to cents with comma separators.
// e.g., 1234.5 -> "1,234.50"
func FormatAmount(amount float64) string {
	d := Money(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// beyond int64; skip grouping
		return sign + fixed
	}
	return sign + FormatNumber(n) + "." + frac
}

func symbolFor(c model.Currency) string {
	if s := config.Symbol(c); s != "" {
		return s
	}
	return string(c) + " "
}

// FormatCompact formats a value with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatCompact(v float64) string {
	abs := math.Abs(v)

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
}

// FormatRate formats an exchange rate with enough precision for small quotes.
func FormatRate(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs == 0:
		return "0"
	case abs < 0.01:
		return strconv.FormatFloat(r, 'f', 6, 64)
	case abs < 10:
		return strconv.FormatFloat(r, 'f', 4, 64)
	default:
		return strconv.FormatFloat(r, 'f', 2, 64)
	}
}

// FormatHorizon formats a month count.
// e.g., 60 -> "5y", 26 -> "2y 2m", 8 -> "8m"
func FormatHorizon(months int) string {
	if months <= 0 {
		return "0m"
	}

	years := months / 12
	rem := months % 12

	switch {
	case years > 0 && rem > 0:
		return fmt.Sprintf("%dy %dm", years, rem)
	case years > 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dm", rem)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the gap between a value and a target with sign.
func FormatDelta(current, target float64, c model.Currency) string {
	delta := current - target
	if delta >= 0 {
		return "+" + FormatMoney(delta, c)
	}
	return "-" + FormatMoney(-delta, c)
}
