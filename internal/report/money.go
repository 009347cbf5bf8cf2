package report

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in the display form of currency, e.g. "-$1,200.00".
// Amounts are rounded half away from zero to the currency's minor unit.
// An unknown currency code, or an amount too large for int64 minor units,
// falls back to "<amount> <code>".
func Money(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return amount.StringFixed(int32(cur.Fraction)) + " " + cur.Code
	}
	return cur.Formatter().Format(minor.IntPart())
}

// maxMinor bounds the minor-unit amounts go-money can format. The negative
// side stops at -MaxInt64 because the formatter takes the absolute value.
var maxMinor = decimal.NewFromInt(math.MaxInt64)

// SignedMoney is Money with an explicit "+" for positive amounts.
func SignedMoney(amount decimal.Decimal, currency string) string {
	if amount.IsPositive() {
		return "+" + Money(amount, currency)
	}
	return Money(amount, currency)
}

// Percent formats an annual rate fraction as a percentage: 0.12 is "12%".
func Percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}
