package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept in conversion results.
const MoneyScale = 2

// ParseDecimal parses a decimal string strictly. Surrounding whitespace is
// ignored; anything else that is not a plain decimal is an error.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty decimal value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value %q: %w", s, err)
	}
	return d, nil
}

// RoundMoney rounds half-up (away from zero on ties) to MoneyScale digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatMoney renders d with exactly MoneyScale fractional digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

// MoneyNumber renders d as a JSON number literal with exactly MoneyScale
// fractional digits, so 87 encodes as 87.00 rather than 87.
func MoneyNumber(d decimal.Decimal) json.Number {
	return json.Number(FormatMoney(d))
}

// DecimalNumber renders d as a JSON number literal at its own precision.
func DecimalNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
