package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"currency-exchange-service/internal/domain/model"
)

type ExchangeService interface {
	GetExchangeRate(ctx context.Context, from, to model.Currency) (decimal.Decimal, error)
	GetExchangeRates(ctx context.Context, base model.Currency) (*model.RateTable, error)
	ConvertCurrency(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error)
	ConvertToMultiple(ctx context.Context, request model.MultiConversionRequest) (*model.MultiConversionResult, error)
}
