package cache

import (
	"context"
	"sync"
	"time"

	"currency-exchange-service/internal/domain/model"
	"currency-exchange-service/pkg/logger"
)

type memoryEntry struct {
	table    *model.RateTable
	storedAt time.Time
}

// MemoryCache keeps rate tables in process memory. With a zero TTL entries
// never expire.
type MemoryCache struct {
	cacheMap map[model.Currency]memoryEntry
	mutex    sync.RWMutex
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[model.Currency]memoryEntry),
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (c *MemoryCache) expired(entry memoryEntry, now time.Time) bool {
	return c.cacheTTL > 0 && now.Sub(entry.storedAt) > c.cacheTTL
}

func (c *MemoryCache) Get(ctx context.Context, base model.Currency) (*model.RateTable, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, found := c.cacheMap[base]
	if !found {
		c.log.Debug("Cache miss", "base", base)
		return nil, false
	}
	if c.expired(entry, c.now()) {
		c.log.Debug("Cache entry expired", "base", base)
		return nil, false
	}

	c.log.Debug("Cache hit", "base", base)
	return entry.table, true
}

func (c *MemoryCache) Set(ctx context.Context, table *model.RateTable) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMap[table.Base()] = memoryEntry{
		table:    table,
		storedAt: c.now(),
	}
	c.log.Debug("Cache set", "base", table.Base(), "quotes", table.Len())

	return nil
}

func (c *MemoryCache) ClearExpired(ctx context.Context) (int, error) {
	if c.cacheTTL <= 0 {
		return 0, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for base, entry := range c.cacheMap {
		if c.expired(entry, now) {
			delete(c.cacheMap, base)
			removed++
			c.log.Debug("Removed expired cache entry", "base", base)
		}
	}

	c.log.Info("Cleared expired cache entries", "count", removed)
	return removed, nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMap = make(map[model.Currency]memoryEntry)
	return nil
}

// Size returns the number of stored tables, expired or not.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cacheMap)
}
