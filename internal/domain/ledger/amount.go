package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every stored amount keeps
const MoneyScale = 2

// MaxMoney is the largest magnitude a NUMERIC(14,2) money column holds
var MaxMoney = decimal.RequireFromString("999999999999.99")

// ParseAmount reads a decimal amount such as "500", "12.50" or "-3".
// Zero and negative values parse; callers decide whether to accept them.
// The chainer takes zero and rejects negatives; payments require a positive amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidAmount{Raw: raw}
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount{Raw: raw}
	}
	if err := ValidateMoney(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateMoney rejects values a money column cannot store exactly:
// more than two decimal places, or beyond MaxMoney in either direction.
func ValidateMoney(d decimal.Decimal) error {
	if !d.Equal(d.Round(MoneyScale)) {
		return ErrInvalidAmount{Raw: d.String(), Reason: "more than 2 decimal places"}
	}
	if d.Abs().GreaterThan(MaxMoney) {
		return ErrInvalidAmount{Raw: d.String(), Reason: "out of range"}
	}
	return nil
}
