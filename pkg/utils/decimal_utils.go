package utils

import "github.com/shopspring/decimal"

const (
	// KgDecimalPlaces is the precision weights are carried at everywhere.
	KgDecimalPlaces = 3
	// MoneyDecimalPlaces is the precision currency totals are rounded to.
	MoneyDecimalPlaces = 2
)

// ValidKgPrecision reports whether v is expressible with at most three
// decimal digits. 10.5 and 10.5000 pass, 10.5555 does not.
func ValidKgPrecision(v decimal.Decimal) bool {
	return v.Equal(v.Round(KgDecimalPlaces))
}

// NormalizeKg rescales a weight to exactly three decimal places so 10.5 is
// stored and transmitted as 10.500. Callers must check ValidKgPrecision first.
func NormalizeKg(v decimal.Decimal) decimal.Decimal {
	return v.Round(KgDecimalPlaces)
}

// RoundMoney rounds a currency amount to two decimal places.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyDecimalPlaces)
}
