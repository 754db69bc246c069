package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/internal/domain/ports"
	"currency-exchange-service/internal/metrics"
	"currency-exchange-service/pkg/logger"
	"currency-exchange-service/pkg/utils"
)

const defaultConcurrency = 4

type ExchangeService struct {
	directory   *CurrencyDirectory
	provider    ports.RateProvider
	cache       ports.RateCache
	log         *logger.Logger
	metrics     *metrics.Metrics
	fetches     singleflight.Group
	concurrency int
	now         func() time.Time
}

type Option func(*ExchangeService)

// WithConcurrency bounds how many provider conversions ConvertToMultiple runs
// at once.
func WithConcurrency(n int) Option {
	return func(s *ExchangeService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewExchangeService(
	directory *CurrencyDirectory,
	provider ports.RateProvider,
	cache ports.RateCache,
	log *logger.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *ExchangeService {
	s := &ExchangeService{
		directory:   directory,
		provider:    provider,
		cache:       cache,
		log:         log,
		metrics:     m,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetExchangeRate is the value of one unit of from in to.
func (s *ExchangeService) GetExchangeRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error) {
	result, err := s.ConvertCurrency(ctx, model.ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       decimal.NewFromInt(1),
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.ToAmount, nil
}

// GetExchangeRates returns every quote for base. Tables are cached per base
// currency; concurrent misses for the same base share one provider call.
func (s *ExchangeService) GetExchangeRates(ctx context.Context, base model.Currency) (*model.RateTable, error) {
	if !s.directory.IsValidCurrency(ctx, base) {
		return nil, invalidArgument(msgInvalidBaseCurrency)
	}

	if table, found := s.cache.Get(ctx, base); found {
		s.metrics.ObserveCacheLookup(true)
		return table, nil
	}
	s.metrics.ObserveCacheLookup(false)

	// waiters share this fetch; it is bounded by the client timeout, not by
	// whichever caller started it
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.fetches.Do(base.String(), func() (interface{}, error) {
		if table, found := s.cache.Get(fetchCtx, base); found {
			return table, nil
		}

		s.log.Info("Fetching exchange rates from provider", "base", base)
		quotes, err := s.provider.FetchQuotes(fetchCtx, base)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
		}

		table, err := model.NewRateTable(base, quotes, s.now())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRate, err)
		}

		if err := s.cache.Set(fetchCtx, table); err != nil {
			s.log.Error("Failed to cache exchange rates", "error", err, "base", base)
		}
		return table, nil
	})
	if err != nil {
		s.log.Error("Failed to get exchange rates", "error", err, "base", base)
		return nil, err
	}

	return v.(*model.RateTable), nil
}

// ConvertCurrency converts through the provider on every call; results never
// come from the rate cache.
func (s *ExchangeService) ConvertCurrency(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
	if !s.directory.IsValidCurrency(ctx, request.FromCurrency) || !s.directory.IsValidCurrency(ctx, request.ToCurrency) {
		return nil, invalidArgument(msgInvalidCurrency)
	}

	if !validAmount(request.Amount) {
		return nil, invalidArgument(msgInvalidAmount)
	}

	converted, err := s.convert(ctx, request.FromCurrency, request.ToCurrency, request.Amount)
	if err != nil {
		return nil, err
	}

	return &model.ConversionResult{
		FromCurrency: request.FromCurrency,
		ToCurrency:   request.ToCurrency,
		FromAmount:   request.Amount,
		ToAmount:     converted,
	}, nil
}

// ConvertToMultiple converts one amount into every target currency. Targets
// are validated in request order before any conversion runs, and any failure
// discards the whole result.
func (s *ExchangeService) ConvertToMultiple(ctx context.Context, request model.MultiConversionRequest) (*model.MultiConversionResult, error) {
	if !s.directory.IsValidCurrency(ctx, request.FromCurrency) {
		return nil, invalidArgument(msgInvalidCurrency)
	}

	if !validAmount(request.Amount) {
		return nil, invalidArgument(msgInvalidAmount)
	}

	targets := make([]model.Currency, 0, len(request.ToCurrencies))
	seen := make(map[model.Currency]struct{}, len(request.ToCurrencies))
	for _, to := range request.ToCurrencies {
		if !s.directory.IsValidCurrency(ctx, to) {
			return nil, invalidTarget(to)
		}
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		targets = append(targets, to)
	}

	results := make([]*model.ConversionResult, len(targets))
	errs := make([]error, len(targets))

	var mu sync.Mutex
	firstFailed := len(targets)
	failedBefore := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return firstFailed < i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, to := range targets {
		if gctx.Err() != nil {
			break
		}
		i, to := i, to
		g.Go(func() error {
			// an earlier target already failed, so this result cannot be used
			if failedBefore(i) {
				return nil
			}
			result, err := s.ConvertCurrency(ctx, model.ConversionRequest{
				FromCurrency: request.FromCurrency,
				ToCurrency:   to,
				Amount:       request.Amount,
			})
			if err != nil {
				mu.Lock()
				errs[i] = err
				if i < firstFailed {
					firstFailed = i
				}
				mu.Unlock()
				return err
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	// every target before firstFailed ran to completion, so this is the first
	// failure in request order
	if firstFailed < len(targets) {
		err := errs[firstFailed]
		s.log.Error("Multi-currency conversion aborted", "error", err, "from", request.FromCurrency, "to", targets[firstFailed])
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	amounts := make(map[model.Currency]decimal.Decimal, len(targets))
	for i, to := range targets {
		amounts[to] = results[i].ToAmount
	}

	return &model.MultiConversionResult{
		FromCurrency: request.FromCurrency,
		FromAmount:   request.Amount,
		Amounts:      amounts,
	}, nil
}

func (s *ExchangeService) convert(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	raw, err := s.provider.Convert(ctx, from, to, amount)
	if errors.Is(err, ports.ErrNoResult) {
		return decimal.Zero, invalidArgument(msgConversionData)
	}
	if err != nil {
		s.log.Error("Failed to convert currency", "error", err, "from", from, "to", to)
		return decimal.Zero, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	parsed, err := utils.ParseDecimal(raw)
	if err != nil {
		s.log.Error("Provider returned an unparseable conversion result", "error", err, "from", from, "to", to)
		return decimal.Zero, invalidArgument(msgConversionData)
	}

	return utils.RoundMoney(parsed), nil
}

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive()
}
