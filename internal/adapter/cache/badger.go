package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/pkg/logger"
)

const badgerKeyPrefix = "rates:"

// BadgerCache persists rate tables in BadgerDB so they survive restarts.
// Expiry is delegated to badger's entry TTL.
type BadgerCache struct {
	db       *badger.DB
	cacheTTL time.Duration
	log      *logger.Logger
}

type storedTable struct {
	Base      string            `json:"base"`
	Quotes    map[string]string `json:"quotes"`
	FetchedAt time.Time         `json:"fetched_at"`
}

func NewBadgerCache(db *badger.DB, cacheTTL time.Duration, log *logger.Logger) *BadgerCache {
	return &BadgerCache{
		db:       db,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// OpenBadger opens a database at path; an empty path opens an in-memory one.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return db, nil
}

func badgerKey(base model.Currency) []byte {
	return []byte(badgerKeyPrefix + base.String())
}

func (c *BadgerCache) Get(ctx context.Context, base model.Currency) (*model.RateTable, bool) {
	var stored storedTable

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(base))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		c.log.Debug("Cache miss", "base", base)
		return nil, false
	}
	if err != nil {
		c.log.Error("Failed to read cached rates", "base", base, "error", err)
		return nil, false
	}

	table, err := model.NewRateTable(model.Currency(stored.Base), stored.Quotes, stored.FetchedAt)
	if err != nil {
		c.log.Error("Discarding corrupt cached rates", "base", base, "error", err)
		return nil, false
	}

	c.log.Debug("Cache hit", "base", base)
	return table, true
}

func (c *BadgerCache) Set(ctx context.Context, table *model.RateTable) error {
	stored := storedTable{
		Base:      table.Base().String(),
		Quotes:    make(map[string]string, table.Len()),
		FetchedAt: table.FetchedAt(),
	}
	for code, rate := range table.Rates() {
		stored.Quotes[code.String()] = rate.String()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal rate table: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(badgerKey(table.Base()), data)
		if c.cacheTTL > 0 {
			entry = entry.WithTTL(c.cacheTTL)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to store rate table: %w", err)
	}

	c.log.Debug("Cache set", "base", table.Base(), "quotes", table.Len())
	return nil
}

// ClearExpired runs a value log GC pass; expired keys are already invisible
// to readers.
func (c *BadgerCache) ClearExpired(ctx context.Context) (int, error) {
	err := c.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		return 0, fmt.Errorf("value log GC failed: %w", err)
	}
	return 0, nil
}

func (c *BadgerCache) Clear(ctx context.Context) error {
	if err := c.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		return fmt.Errorf("failed to clear cached rates: %w", err)
	}
	return nil
}
