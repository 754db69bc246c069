package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"currency-exchange-service/pkg/utils"
)

// RateTable holds every quote for a single base currency. It is built once per
// provider fetch and is read-only afterwards, so it can be shared freely
// between goroutines.
type RateTable struct {
	base      Currency
	rates     map[Currency]decimal.Decimal
	fetchedAt time.Time
}

// NewRateTable parses raw provider quotes into a RateTable. Every value must
// be a non-negative decimal; the first bad value fails the whole table.
func NewRateTable(base Currency, quotes map[string]string, fetchedAt time.Time) (*RateTable, error) {
	rates := make(map[Currency]decimal.Decimal, len(quotes))
	for code, raw := range quotes {
		rate, err := utils.ParseDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", code, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("quote %s: negative rate %s", code, rate)
		}
		rates[Currency(code)] = rate
	}
	return &RateTable{
		base:      base,
		rates:     rates,
		fetchedAt: fetchedAt,
	}, nil
}

func (t *RateTable) Base() Currency {
	return t.base
}

func (t *RateTable) FetchedAt() time.Time {
	return t.fetchedAt
}

func (t *RateTable) Len() int {
	return len(t.rates)
}

// Rate returns the quote stored under code.
func (t *RateTable) Rate(code Currency) (decimal.Decimal, bool) {
	rate, ok := t.rates[code]
	return rate, ok
}

// Codes returns the quoted codes in sorted order.
func (t *RateTable) Codes() []Currency {
	codes := make([]Currency, 0, len(t.rates))
	for c := range t.rates {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Rates returns a copy of the quotes, safe for the caller to modify.
func (t *RateTable) Rates() map[Currency]decimal.Decimal {
	out := make(map[Currency]decimal.Decimal, len(t.rates))
	for c, r := range t.rates {
		out[c] = r
	}
	return out
}

type ConversionRequest struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

// ConversionResult is Amount of FromCurrency expressed in ToCurrency, rounded
// to two fractional digits.
type ConversionResult struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
}

type MultiConversionRequest struct {
	FromCurrency Currency        `json:"from_currency"`
	Amount       decimal.Decimal `json:"amount"`
	ToCurrencies []Currency      `json:"to_currencies"`
}

// MultiConversionResult holds one converted amount per requested target.
type MultiConversionResult struct {
	FromCurrency Currency                     `json:"from_currency"`
	FromAmount   decimal.Decimal              `json:"from_amount"`
	Amounts      map[Currency]decimal.Decimal `json:"amounts"`
}
