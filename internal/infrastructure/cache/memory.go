package cache

import (
	"context"
	"sync"

	"github.com/coscheck/coscheck/internal/domain/table"
)

type memoryEntry struct {
	version string
	table   *table.NormalizedTable
}

// MemoryCache is the in-process TableCache used by single-instance
// deployments and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache builds an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

var _ TableCache = (*MemoryCache)(nil)

func (c *MemoryCache) Get(_ context.Context, source, version string) (*table.NormalizedTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[source]
	if !ok || e.version != version {
		return nil, false, nil
	}
	return e.table, true, nil
}

func (c *MemoryCache) Put(_ context.Context, source, version string, t *table.NormalizedTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = memoryEntry{version: version, table: t}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, source)
	return nil
}
