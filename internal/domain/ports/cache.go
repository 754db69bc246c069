package ports

import (
	"context"

	"currency-exchange-service/internal/domain/model"
)

// RateCache stores complete rate tables keyed by base currency. Set must only
// ever be handed a fully built table.
type RateCache interface {
	Get(ctx context.Context, base model.Currency) (*model.RateTable, bool)
	Set(ctx context.Context, table *model.RateTable) error
	ClearExpired(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
