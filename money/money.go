package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
)

// Amount represents a monetary value with currency-aware decimal precision for JSON marshaling.
// Uses go-money for ISO 4217 currency support (e.g. USD=2, KWD=3, JPY=0 decimal places).
type Amount struct {
	Value    float64
	Currency *string
}

// MarshalJSON implements json.Marshaler to output clean decimal format (e.g. 12.95 not 12.950000762939453).
func (a Amount) MarshalJSON() ([]byte, error) {
	decimals := DecimalPlaces(a.Currency)
	format := fmt.Sprintf("%%.%df", decimals)
	return []byte(fmt.Sprintf(format, a.Value)), nil
}

// DecimalPlaces returns the number of decimal places for the currency per ISO 4217.
// Defaults to 2 for nil or unknown currencies.
func DecimalPlaces(currency *string) int {
	c := money.GetCurrency(currencyCode(currency))
	if c == nil {
		return 2
	}
	return c.Fraction
}

// Round rounds a value to the currency's decimal places using go-money.
func Round(value float64, currency *string) float64 {
	m := money.NewFromFloat(value, currencyCode(currency))
	return m.Round().AsMajorUnits()
}

// RoundHalfEven rounds a value to the currency's minor unit using banker's
// rounding. Settlement math uses this so repeated half-cent cases don't bias
// any one participant's total.
func RoundHalfEven(value float64, currency *string) float64 {
	factor := MinorUnitFactor(currency)
	return math.RoundToEven(value*factor) / factor
}

// MinorUnitFactor returns the multiplier that converts a major-unit value to
// minor units (100 for USD, 1000 for KWD, 1 for JPY).
func MinorUnitFactor(currency *string) float64 {
	return math.Pow(10, float64(DecimalPlaces(currency)))
}

// NewAmount creates an Amount for JSON marshaling with currency-aware precision.
func NewAmount(value float64, currency *string) Amount {
	return Amount{
		Value:    Round(value, currency),
		Currency: currency,
	}
}

// Ptr returns a pointer to an Amount, or nil if value is nil.
func Ptr(value *float64, currency *string) *Amount {
	if value == nil {
		return nil
	}
	a := NewAmount(*value, currency)
	return &a
}

func currencyCode(currency *string) string {
	if currency != nil && strings.TrimSpace(*currency) != "" {
		return strings.ToUpper(*currency)
	}
	return money.USD
}
