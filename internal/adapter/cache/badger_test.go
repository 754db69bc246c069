package cache

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-exchange-service/pkg/logger"
)

func newTestBadgerCache(t *testing.T) *BadgerCache {
	t.Helper()
	db, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBadgerCache(db, 0, logger.NewLogger("error"))
}

func TestBadgerCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestBadgerCache(t)

	_, found := c.Get(ctx, "USD")
	assert.False(t, found)

	table := mustTable(t, "USD", map[string]string{"USDEUR": "0.921500", "USDJPY": "153.2"})
	require.NoError(t, c.Set(ctx, table))

	got, found := c.Get(ctx, "USD")
	require.True(t, found)
	assert.Equal(t, table.Base(), got.Base())
	assert.True(t, table.FetchedAt().Equal(got.FetchedAt()))
	assert.Equal(t, table.Codes(), got.Codes())

	rate, ok := got.Rate("USDEUR")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9215")))
}

func TestBadgerCache_ClearAndSweep(t *testing.T) {
	ctx := context.Background()
	c := newTestBadgerCache(t)

	require.NoError(t, c.Set(ctx, mustTable(t, "USD", map[string]string{"USDEUR": "0.92"})))
	require.NoError(t, c.Set(ctx, mustTable(t, "EUR", map[string]string{"EURUSD": "1.08"})))

	removed, err := c.ClearExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	require.NoError(t, c.Clear(ctx))

	_, found := c.Get(ctx, "USD")
	assert.False(t, found)
	_, found = c.Get(ctx, "EUR")
	assert.False(t, found)
}
