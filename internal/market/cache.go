package market

import (
	"log/slog"
	"sync"

	"github.com/rickgao/vio-data/internal/model"
)

// Config holds cache configuration.
type Config struct {
	// Capacity bounds the number of snapshots kept. Zero means unbounded.
	// When full, the oldest added snapshot is evicted.
	Capacity int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Capacity: 0}
}

// Cache stores snapshots by id. It is safe for concurrent use.
type Cache struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	byID   map[int64]*model.MarketInstance
	order  []int64 // insertion order, for eviction
	latest *model.MarketInstance
}

// NewCache creates an empty cache.
func NewCache(cfg Config, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		cfg:    cfg,
		logger: logger,
		byID:   make(map[int64]*model.MarketInstance),
	}
}

// Add inserts m unless a snapshot with the same id is already present.
// It reports whether m was added.
func (c *Cache) Add(m *model.MarketInstance) bool {
	if m == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[m.ID]; ok {
		return false
	}

	c.byID[m.ID] = m
	c.order = append(c.order, m.ID)

	if c.cfg.Capacity > 0 {
		for len(c.order) > c.cfg.Capacity {
			evicted := c.order[0]
			c.order = c.order[1:]
			delete(c.byID, evicted)
			c.logger.Debug("evicted snapshot", "id", evicted)
		}
	}

	return true
}

// Get returns the cached snapshot with the given id.
func (c *Cache) Get(id int64) (*model.MarketInstance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// Contains reports whether a snapshot with the given id is cached.
func (c *Cache) Contains(id int64) bool {
	_, ok := c.Get(id)
	return ok
}

// Snapshots returns the cached snapshots in insertion order.
func (c *Cache) Snapshots() []*model.MarketInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.MarketInstance, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Latest returns the most recently recorded current snapshot, or nil.
func (c *Cache) Latest() *model.MarketInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// SetLatest records m as the current snapshot. It does not add m to the set.
func (c *Cache) SetLatest(m *model.MarketInstance) {
	c.mu.Lock()
	c.latest = m
	c.mu.Unlock()
}

// Record adds m and makes it the latest snapshot. It reports whether m was
// new to the set.
func (c *Cache) Record(m *model.MarketInstance) bool {
	added := c.Add(m)
	c.SetLatest(m)
	return added
}
