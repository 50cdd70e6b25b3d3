package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places kept for monetary amounts.
const CentPlaces = 2

// RoundMoney rounds an amount to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// ParseAmount parses an operator-entered amount. Blank input is zero, as in a
// cleared tender field.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if d.IsNegative() {
		return decimal.Zero, ValidationError{Field: "amount", Message: "amount cannot be negative"}
	}

	return RoundMoney(d), nil
}

// FormatMoney renders an amount with two decimals and a currency sign.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(CentPlaces)
}
