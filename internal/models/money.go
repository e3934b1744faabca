package models

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits every monetary value is
// rounded to.
const MoneyPlaces = 2

// Round2 rounds half away from zero to two decimal places. All amounts in
// this package are non-negative, so this is round-half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// sum adds up values with no intermediate rounding.
func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
