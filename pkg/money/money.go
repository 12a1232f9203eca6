// Package money converts between catalog price strings, integer minor units
// and the two-decimal strings stored on bookings.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyPrice   = errors.New("price is empty")
	ErrInvalidPrice = errors.New("price is not numeric")
	ErrNonPositive  = errors.New("price must be positive")
	ErrOutOfRange   = errors.New("price does not fit in cents")
	hundred         = decimal.NewFromInt(100)
)

// ParseCents reads a human-entered catalog price such as "$1,200" or
// "899.99 USD" and returns the amount in cents. Everything other than digits
// and '.' is discarded before parsing; the result is rounded half away from
// zero. Zero, negative and out-of-range results are rejected.
func ParseCents(raw string) (int64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, ErrEmptyPrice
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidPrice
	}

	cents, err := toCents(amount)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrNonPositive
	}
	return cents, nil
}

func toCents(amount decimal.Decimal) (int64, error) {
	scaled := amount.Mul(hundred).Round(0)
	if !scaled.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return scaled.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string ("2598.00").
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// FormatDisplay renders cents for people, e.g. "$2,598.00".
func FormatDisplay(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	fixed := FormatCents(cents)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return sign + "$" + grouped.String() + "." + frac
}

// CentsFromDecimalString parses the two-decimal total_price column back into cents.
func CentsFromDecimalString(value string) (int64, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, ErrInvalidPrice
	}
	return toCents(amount)
}
