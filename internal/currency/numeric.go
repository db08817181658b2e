package currency

import (
	"fmt"
	"strings"
)

// numericCodes maps alpha-3 codes to their ISO-4217 numeric code for the
// currencies accepted by providers that put numeric codes on the wire.
var numericCodes = map[string]string{
	"AED": "784",
	"ARS": "032",
	"AUD": "036",
	"BRL": "986",
	"CAD": "124",
	"CHF": "756",
	"CLP": "152",
	"CNY": "156",
	"COP": "170",
	"CZK": "203",
	"DKK": "208",
	"EUR": "978",
	"GBP": "826",
	"HKD": "344",
	"HUF": "348",
	"IDR": "360",
	"ILS": "376",
	"INR": "356",
	"JPY": "392",
	"KRW": "410",
	"MAD": "504",
	"MXN": "484",
	"MYR": "458",
	"NOK": "578",
	"NZD": "554",
	"PEN": "604",
	"PHP": "608",
	"PLN": "985",
	"RON": "946",
	"RUB": "643",
	"SAR": "682",
	"SEK": "752",
	"SGD": "702",
	"THB": "764",
	"TND": "788",
	"TRY": "949",
	"TWD": "901",
	"UAH": "980",
	"USD": "840",
	"XAF": "950",
	"XOF": "952",
	"XPF": "953",
	"ZAR": "710",
}

var alphaCodes = func() map[string]string {
	m := make(map[string]string, len(numericCodes))
	for alpha, numeric := range numericCodes {
		m[numeric] = alpha
	}
	return m
}()

// Numeric converts an alpha-3 code to its numeric form.
func Numeric(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	n, ok := numericCodes[code]
	if !ok {
		return "", fmt.Errorf("%w: no numeric code for %q", ErrUnknownCurrency, code)
	}
	return n, nil
}

// Alpha converts a numeric code to its alpha-3 form.
func Alpha(numeric string) (string, error) {
	a, ok := alphaCodes[strings.TrimSpace(numeric)]
	if !ok {
		return "", fmt.Errorf("%w: numeric %q", ErrUnknownCurrency, numeric)
	}
	return a, nil
}
