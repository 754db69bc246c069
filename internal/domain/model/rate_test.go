package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateTable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	table, err := NewRateTable("USD", map[string]string{
		"USDEUR": "0.9215",
		"USDGBP": "0.7911",
		"USDJPY": "153.2",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, Currency("USD"), table.Base())
	assert.Equal(t, now, table.FetchedAt())
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []Currency{"USDEUR", "USDGBP", "USDJPY"}, table.Codes())

	rate, ok := table.Rate("USDEUR")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9215")))

	_, ok = table.Rate("USDXYZ")
	assert.False(t, ok)
}

func TestNewRateTable_RejectsMalformedQuotes(t *testing.T) {
	_, err := NewRateTable("USD", map[string]string{"USDEUR": "n/a"}, time.Now())
	assert.Error(t, err)

	_, err = NewRateTable("USD", map[string]string{"USDEUR": "-0.5"}, time.Now())
	assert.Error(t, err)
}

func TestRateTable_RatesReturnsCopy(t *testing.T) {
	table, err := NewRateTable("USD", map[string]string{"USDEUR": "0.92"}, time.Now())
	require.NoError(t, err)

	rates := table.Rates()
	rates["USDEUR"] = decimal.NewFromInt(5)
	delete(rates, "USDEUR")

	rate, ok := table.Rate("USDEUR")
	require.True(t, ok)
	assert.Equal(t, "0.92", rate.String())
}

func TestCurrencyDirectory(t *testing.T) {
	var empty CurrencyDirectory
	assert.False(t, empty.Contains("USD"))

	dir := CurrencyDirectory{"USD": "United States Dollar", "EUR": "Euro"}
	assert.True(t, dir.Contains("USD"))
	assert.False(t, dir.Contains("usd"))
	assert.Equal(t, []Currency{"EUR", "USD"}, dir.Codes())
}
