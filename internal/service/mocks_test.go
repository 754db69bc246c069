package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"currency-exchange-service/internal/adapter/cache"
	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/internal/metrics"
	"currency-exchange-service/pkg/logger"
)

type MockRateProvider struct {
	ListCurrenciesFunc func(ctx context.Context) (model.CurrencyDirectory, error)
	FetchQuotesFunc    func(ctx context.Context, base model.Currency) (map[string]string, error)
	ConvertFunc        func(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (string, error)

	listCalls    atomic.Int32
	quotesCalls  atomic.Int32
	convertCalls atomic.Int32

	mu        sync.Mutex
	converted []model.Currency
}

func (m *MockRateProvider) ListCurrencies(ctx context.Context) (model.CurrencyDirectory, error) {
	m.listCalls.Add(1)
	return m.ListCurrenciesFunc(ctx)
}

func (m *MockRateProvider) FetchQuotes(ctx context.Context, base model.Currency) (map[string]string, error) {
	m.quotesCalls.Add(1)
	return m.FetchQuotesFunc(ctx, base)
}

func (m *MockRateProvider) Convert(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (string, error) {
	m.convertCalls.Add(1)
	m.mu.Lock()
	m.converted = append(m.converted, to)
	m.mu.Unlock()
	return m.ConvertFunc(ctx, from, to, amount)
}

func (m *MockRateProvider) convertedTargets() []model.Currency {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Currency(nil), m.converted...)
}

var testDirectory = model.CurrencyDirectory{
	"USD": "United States Dollar",
	"EUR": "Euro",
	"GBP": "British Pound Sterling",
	"JPY": "Japanese Yen",
}

// newMockProvider answers the currency list with testDirectory and converts at
// fixed per-unit rates.
func newMockProvider() *MockRateProvider {
	rates := map[model.Currency]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.RequireFromString("153.2"),
	}
	return &MockRateProvider{
		ListCurrenciesFunc: func(ctx context.Context) (model.CurrencyDirectory, error) {
			return testDirectory, nil
		},
		FetchQuotesFunc: func(ctx context.Context, base model.Currency) (map[string]string, error) {
			return map[string]string{
				"USDEUR": "0.92",
				"USDGBP": "0.79",
			}, nil
		},
		ConvertFunc: func(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (string, error) {
			return amount.Mul(rates[to]).Div(rates[from]).String(), nil
		},
	}
}

func newTestService(provider *MockRateProvider, opts ...Option) *ExchangeService {
	log := logger.NewLogger("error")
	return NewExchangeService(
		NewCurrencyDirectory(provider, log),
		provider,
		cache.NewMemoryCache(0, log),
		log,
		metrics.NewMetrics(prometheus.NewRegistry()),
		opts...,
	)
}
