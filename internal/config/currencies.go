package config

import (
	"strings"

	"github.com/theirongolddev/goalplan/internal/model"
)

// CurrencyInfo describes a supported currency.
type CurrencyInfo struct {
	Code   model.Currency
	Name   string
	Symbol string
}

// Currencies is the fixed set of supported currencies, in display order.
// Order matters: alternate-currency suggestions break ties by it.
var Currencies = []CurrencyInfo{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "PHP", Name: "Philippine Peso", Symbol: "₱"},
}

var currencyIndex = makeCurrencyIndex(Currencies)

func makeCurrencyIndex(list []CurrencyInfo) map[model.Currency]CurrencyInfo {
	idx := make(map[model.Currency]CurrencyInfo, len(list))
	for _, c := range list {
		idx[c.Code] = c
	}
	return idx
}

// NormalizeCurrency upper-cases and trims a currency code.
// e.g., " eur " -> "EUR"
func NormalizeCurrency(raw string) model.Currency {
	return model.Currency(strings.ToUpper(strings.TrimSpace(raw)))
}

// LookupCurrency returns the table entry for a code, normalizing it first.
func LookupCurrency(code string) (CurrencyInfo, bool) {
	c, ok := currencyIndex[NormalizeCurrency(code)]
	return c, ok
}

// IsSupported reports whether the code is in the supported table.
func IsSupported(c model.Currency) bool {
	_, ok := currencyIndex[c]
	return ok
}

// Symbol returns the display symbol for a currency, or "" when unknown.
func Symbol(c model.Currency) string {
	return currencyIndex[c].Symbol
}

// CurrencyCodes returns the supported codes in table order.
func CurrencyCodes() []model.Currency {
	codes := make([]model.Currency, len(Currencies))
	for i, c := range Currencies {
		codes[i] = c.Code
	}
	return codes
}

// ParsePair parses "USD/EUR" (or "USD-EUR") into base and target.
func ParsePair(s string) (base, target model.Currency, ok bool) {
	sep := strings.IndexAny(s, "/-")
	if sep <= 0 || sep == len(s)-1 {
		return "", "", false
	}
	base = NormalizeCurrency(s[:sep])
	target = NormalizeCurrency(s[sep+1:])
	if !IsSupported(base) || !IsSupported(target) {
		return "", "", false
	}
	return base, target, true
}
