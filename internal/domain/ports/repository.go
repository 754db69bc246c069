package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"currency-exchange-service/internal/domain/model"
)

var (
	// ErrProviderFailure covers transport errors, non-2xx statuses, undecodable
	// bodies and responses the provider itself flags as unsuccessful.
	ErrProviderFailure = errors.New("provider request failed")
	// ErrNoResult is returned by Convert when the response has no result field.
	ErrNoResult = errors.New("provider response has no result")
)

// RateProvider is the upstream exchange-rate service.
type RateProvider interface {
	ListCurrencies(ctx context.Context) (model.CurrencyDirectory, error)
	// FetchQuotes returns the raw quote strings for base, keyed as the
	// provider reports them.
	FetchQuotes(ctx context.Context, base model.Currency) (map[string]string, error)
	// Convert returns the provider's unrounded result string.
	Convert(ctx context.Context, from, to model.Currency, amount decimal.Decimal) (string, error)
}
