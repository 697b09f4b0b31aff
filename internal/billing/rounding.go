package billing

import "github.com/shopspring/decimal"

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to paise. All monetary outputs go through here exactly once.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
