// Package currency validates ISO-4217 codes and converts amounts between
// minor units and the representations payment providers put on the wire.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrUnknownCurrency = errors.New("unknown ISO-4217 currency code")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// Validate returns the canonical upper-case alpha-3 form of code.
func Validate(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return unit.String(), nil
}

// Digits returns the number of minor-unit digits of an alpha-3 currency.
func Digits(code string) (int, error) {
	code, err := Validate(code)
	if err != nil {
		return 0, err
	}

	unit := currency.MustParseISO(code)
	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// FormatMinor renders a minor-unit amount as a fixed-point decimal string,
// e.g. 1050 EUR -> "10.50" and 1050 JPY -> "1050".
func FormatMinor(amount int64, code string) (string, error) {
	digits, err := Digits(code)
	if err != nil {
		return "", err
	}
	return decimal.New(amount, -int32(digits)).StringFixed(int32(digits)), nil
}

// ParseMajor converts a decimal amount expressed in major units back to minor
// units. Amounts with more precision than the currency allows are rejected.
func ParseMajor(value, code string) (int64, error) {
	digits, err := Digits(code)
	if err != nil {
		return 0, err
	}

	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	minor := d.Shift(int32(digits))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, value, digits)
	}
	return minor.IntPart(), nil
}
