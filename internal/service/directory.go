package service

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/internal/domain/ports"
	"currency-exchange-service/pkg/logger"
)

// CurrencyDirectory lazily loads the provider's currency list on first use
// and answers membership queries from it. A failed load leaves the directory
// unset, so every code reads as invalid until a later call loads it.
type CurrencyDirectory struct {
	provider   ports.RateProvider
	log        *logger.Logger
	loads      singleflight.Group
	mutex      sync.RWMutex
	currencies model.CurrencyDirectory
}

func NewCurrencyDirectory(provider ports.RateProvider, log *logger.Logger) *CurrencyDirectory {
	return &CurrencyDirectory{
		provider: provider,
		log:      log,
	}
}

func (d *CurrencyDirectory) IsValidCurrency(ctx context.Context, code model.Currency) bool {
	return d.load(ctx).Contains(code)
}

// Invalidate drops the loaded directory; the next query reloads it.
func (d *CurrencyDirectory) Invalidate() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.currencies = nil
}

func (d *CurrencyDirectory) load(ctx context.Context) model.CurrencyDirectory {
	d.mutex.RLock()
	currencies := d.currencies
	d.mutex.RUnlock()
	if currencies != nil {
		return currencies
	}

	// the load is shared, so one caller cancelling must not fail the others
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := d.loads.Do("currencies", func() (interface{}, error) {
		fetched, err := d.provider.ListCurrencies(loadCtx)
		if err != nil {
			return nil, err
		}
		if len(fetched) == 0 {
			return nil, nil
		}

		d.mutex.Lock()
		defer d.mutex.Unlock()
		if d.currencies == nil {
			d.currencies = fetched
			d.log.Info("Loaded currency directory", "currencies", len(fetched))
		}
		return d.currencies, nil
	})
	if err != nil {
		d.log.Error("Failed to load currency directory, treating all currencies as invalid", "error", err)
		return nil
	}
	if v == nil {
		d.log.Warn("Provider returned an empty currency directory")
		return nil
	}
	return v.(model.CurrencyDirectory)
}
