package domain

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for every monetary
// value (prices, fees, taxes, totals, balances).
const MoneyScale = 4

// RoundMoney normalizes a monetary value to MoneyScale fractional digits,
// rounding half away from zero. Applied wherever a price or amount enters
// the system so arithmetic downstream stays exact.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ValidateCurrency checks code against the ISO-4217 registry.
func ValidateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("%q: %w", code, ErrInvalidCurrency)
	}
	return nil
}
