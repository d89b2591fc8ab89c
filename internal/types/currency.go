package types

import (
	"strings"

	ierr "github.com/flexprice/recurring/internal/errors"
)

const (
	CurrencyUSD = "USD"
	CurrencyIDR = "IDR"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"USD": "$",
	"IDR": "Rp",
	"EUR": "€",
	"GBP": "£",
	"SGD": "S$",
	"MYR": "RM",
	"PHP": "₱",
	"THB": "฿",
	"VND": "₫",
	"AUD": "AU$",
	"JPY": "¥",
	"INR": "₹",
}

// zero-decimal currencies are charged in whole units by the providers
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"VND": true,
	"KRW": true,
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[NormalizeCurrency(code)]; ok {
		return symbol
	}
	return code
}

// NormalizeCurrency upper-cases and trims an ISO 4217 code
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsZeroDecimalCurrency(code string) bool {
	return zeroDecimalCurrencies[NormalizeCurrency(code)]
}

func ValidateCurrencyCode(code string) error {
	c := NormalizeCurrency(code)
	if len(c) != 3 {
		return ierr.NewError("invalid currency code").
			WithHint("Currency must be a 3 letter ISO code").
			WithReportableDetails(map[string]any{
				"currency": code,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
