// Package validation turns raw request input into canonical account numbers,
// holder names and money amounts, or fails with a validation error.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"bank/internal/domain"
)

const (
	AccountNoLength  = 10
	MinHolderNameLen = 3
	MaxHolderNameLen = 60
	MoneyPrecision   = 2
)

// Bounds on raw numeric input. Comparing or rounding a decimal rescales it,
// so an unbounded exponent would cost time and memory proportional to it.
// The exponent range matches what a float64 can represent.
const (
	maxNumberLen = 64
	maxExponent  = 308
	minExponent  = -340
)

var MaxAmount = decimal.NewFromInt(1_000_000_000)

func NormalizeAccountNo(raw, fieldName string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", domain.ValidationError("%s is required", fieldName)
	}
	if !isDigits(value, AccountNoLength) {
		return "", domain.ValidationError("%s must be exactly %d digits", fieldName, AccountNoLength)
	}
	return value, nil
}

func NormalizeHolderName(raw string) (string, error) {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return "", domain.ValidationError("holderName is required")
	}
	if n := utf8.RuneCountInString(value); n < MinHolderNameLen || n > MaxHolderNameLen {
		return "", domain.ValidationError("holderName must be between %d and %d characters", MinHolderNameLen, MaxHolderNameLen)
	}
	return value, nil
}

// ParseAmount parses a strictly positive transaction amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	value, ok := parseDecimal(strings.TrimSpace(raw))
	if !ok || !value.IsPositive() {
		return decimal.Zero, domain.ValidationError("Amount must be a valid number greater than 0")
	}
	if value.GreaterThan(MaxAmount) {
		return decimal.Zero, domain.ValidationError("Amount cannot be more than %s", MaxAmount)
	}
	if HasMoreThanTwoDecimals(value) {
		return decimal.Zero, domain.ValidationError("Amount can have at most %d decimal places", MoneyPrecision)
	}
	return value.Round(MoneyPrecision), nil
}

// ParseNonNegativeMoney parses an opening balance. Empty input means zero.
func ParseNonNegativeMoney(raw, label string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, ok := parseDecimal(raw)
	if !ok || value.IsNegative() {
		return decimal.Zero, domain.ValidationError("%s must be a valid non-negative number", label)
	}
	if HasMoreThanTwoDecimals(value) {
		return decimal.Zero, domain.ValidationError("%s can have at most %d decimal places", label, MoneyPrecision)
	}
	if value.GreaterThan(MaxAmount) {
		return decimal.Zero, domain.ValidationError("%s cannot be more than %s", label, MaxAmount)
	}
	return value.Round(MoneyPrecision), nil
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	if len(raw) > maxNumberLen {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := value.Exponent(); exp > maxExponent || exp < minExponent {
		return decimal.Zero, false
	}
	return value, true
}

// HasMoreThanTwoDecimals is exact on decimal values.
func HasMoreThanTwoDecimals(v decimal.Decimal) bool {
	return !v.Equal(v.Round(MoneyPrecision))
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
