package domain

import "strings"

// Currency is an ISO 4217 currency code.
type Currency string

// Supported currency codes.
var validCurrencies = map[Currency]bool{
	"PEN": true, "USD": true, "EUR": true, "GBP": true,
	"JPY": true, "CNY": true, "AUD": true, "CAD": true,
	"CHF": true, "SEK": true, "NZD": true, "KRW": true,
	"SGD": true, "NOK": true, "MXN": true, "INR": true,
	"BRL": true, "ZAR": true, "CLP": true, "COP": true,
	"ARS": true, "HKD": true, "TRY": true,
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !validCurrencies[c] {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// IsValid reports whether c is a supported currency code.
func (c Currency) IsValid() bool {
	return validCurrencies[c]
}
