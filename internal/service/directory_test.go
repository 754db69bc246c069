package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/pkg/logger"
)

func TestCurrencyDirectory_LoadsOnce(t *testing.T) {
	provider := newMockProvider()
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))
	ctx := context.Background()

	assert.Equal(t, int32(0), provider.listCalls.Load())

	assert.True(t, dir.IsValidCurrency(ctx, "USD"))
	assert.True(t, dir.IsValidCurrency(ctx, "EUR"))
	assert.False(t, dir.IsValidCurrency(ctx, "XYZ"))
	assert.False(t, dir.IsValidCurrency(ctx, "usd"))

	assert.Equal(t, int32(1), provider.listCalls.Load())
}

func TestCurrencyDirectory_FailClosed(t *testing.T) {
	provider := newMockProvider()
	provider.ListCurrenciesFunc = func(ctx context.Context) (model.CurrencyDirectory, error) {
		return nil, errors.New("connection refused")
	}
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))
	ctx := context.Background()

	assert.False(t, dir.IsValidCurrency(ctx, "USD"))
	assert.False(t, dir.IsValidCurrency(ctx, "EUR"))
	assert.Equal(t, int32(2), provider.listCalls.Load(), "a failed load must not be remembered")

	provider.ListCurrenciesFunc = func(ctx context.Context) (model.CurrencyDirectory, error) {
		return testDirectory, nil
	}
	assert.True(t, dir.IsValidCurrency(ctx, "USD"))
}

func TestCurrencyDirectory_EmptyListIsInvalid(t *testing.T) {
	provider := newMockProvider()
	provider.ListCurrenciesFunc = func(ctx context.Context) (model.CurrencyDirectory, error) {
		return model.CurrencyDirectory{}, nil
	}
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))

	assert.False(t, dir.IsValidCurrency(context.Background(), "USD"))
}

func TestCurrencyDirectory_Invalidate(t *testing.T) {
	provider := newMockProvider()
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))
	ctx := context.Background()

	assert.True(t, dir.IsValidCurrency(ctx, "USD"))
	dir.Invalidate()
	assert.True(t, dir.IsValidCurrency(ctx, "USD"))
	assert.Equal(t, int32(2), provider.listCalls.Load())
}

func TestCurrencyDirectory_ConcurrentFirstUse(t *testing.T) {
	provider := newMockProvider()
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, dir.IsValidCurrency(ctx, "GBP"))
		}()
	}
	wg.Wait()

	calls := provider.listCalls.Load()
	assert.GreaterOrEqual(t, calls, int32(1))
	assert.LessOrEqual(t, calls, int32(50))
	assert.True(t, dir.IsValidCurrency(ctx, "JPY"))
	assert.Equal(t, calls, provider.listCalls.Load())
}

func TestCurrencyDirectory_CancelledLoaderDoesNotFailWaiters(t *testing.T) {
	provider := newMockProvider()
	entered := make(chan struct{})
	release := make(chan struct{})
	provider.ListCurrenciesFunc = func(ctx context.Context) (model.CurrencyDirectory, error) {
		close(entered)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return testDirectory, nil
	}
	dir := NewCurrencyDirectory(provider, logger.NewLogger("error"))

	cancelCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dir.IsValidCurrency(cancelCtx, "USD")
	}()
	<-entered

	var healthy bool
	go func() {
		defer wg.Done()
		healthy = dir.IsValidCurrency(context.Background(), "USD")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	assert.True(t, healthy)
	assert.True(t, dir.IsValidCurrency(context.Background(), "EUR"))
	assert.Equal(t, int32(1), provider.listCalls.Load())
}
