// Package format renders decimal amounts for people.
package format

import (
	"strings"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a BRL string with thousands separators (e.g., "-R$ 1.234,56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositive(amount.Abs(), constants.CurrencyPlaces)
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		return "-R$ " + formatted
	}
	return "R$ " + formatted
}

// NumericCurrency returns the amount without a currency symbol (e.g., "-1.234,56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		sign = "-"
	}
	return sign + formatPositive(amount.Abs(), constants.CurrencyPlaces)
}

// Percent returns a percentage with a comma decimal mark (e.g., "12,6825%").
// Trailing zeros are kept to two places at least.
func Percent(rate decimal.Decimal) string {
	places := int32(2)
	// String drops trailing zeros, so the digits after the point are the
	// significant ones.
	if _, frac, ok := strings.Cut(rate.Round(constants.RatePlaces).String(), "."); ok && int32(len(frac)) > places {
		places = int32(len(frac))
	}
	sign := ""
	if rate.Round(places).IsNegative() {
		sign = "-"
	}
	return sign + formatPositive(rate.Abs(), places) + "%"
}

func formatPositive(value decimal.Decimal, places int32) string {
	formatted := value.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if decPart == "" {
		return intPart
	}
	return intPart + "," + decPart
}
