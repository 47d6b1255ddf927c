package cache

import (
	"sync"
	"time"

	"github.com/geosearch-service/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultMaxEntries = 50
	DefaultTTL        = 20 * time.Minute
)

type entry struct {
	key      string
	results  []domain.Place
	storedAt time.Time
}

// SearchCache - in-memory кеш результатов поиска, ограниченный по TTL и
// размеру. Инварианты: после любой мутации Len() <= maxEntries; Get никогда
// не возвращает запись старше TTL. Записи живут только в памяти процесса,
// между сессиями не сохраняются.
type SearchCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// Option настраивает SearchCache при создании
type Option func(*SearchCache)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(c *SearchCache) { c.now = now }
}

func NewSearchCache(maxEntries int, ttl time.Duration, logger *zap.Logger, opts ...Option) *SearchCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &SearchCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get возвращает копию закешированных результатов или (nil, false).
// Протухшая запись удаляется лениво прямо на чтении.
func (c *SearchCache) Get(params domain.SearchParams) ([]domain.Place, bool) {
	key := params.CacheKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.logger.Debug("Cache entry expired", zap.String("key", key))
		return nil, false
	}

	c.logger.Debug("Cache hit", zap.String("key", key), zap.Int("results", len(e.results)))
	return domain.CopyPlaces(e.results), true
}

// Set сохраняет копию результатов с текущей меткой времени.
// Перед вставкой выгребаются протухшие записи, затем при нехватке места
// вытесняются самые старые по storedAt.
func (c *SearchCache) Set(params domain.SearchParams, results []domain.Place) {
	key := params.CacheKey()
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeExpiredLocked(now)

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = &entry{
		key:      key,
		results:  domain.CopyPlaces(results),
		storedAt: now,
	}

	c.logger.Debug("Cache set",
		zap.String("key", key),
		zap.Int("results", len(results)),
		zap.Int("size", len(c.entries)))
}

// InvalidateExpired удаляет все записи старше TTL
func (c *SearchCache) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpiredLocked(c.now())
}

// Len возвращает текущее число записей
func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear полностью очищает кеш
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *SearchCache) removeExpiredLocked(now time.Time) int {
	removed := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Expired cache entries removed", zap.Int("count", removed))
	}
	return removed
}

func (c *SearchCache) evictOldestLocked() {
	var oldest *entry
	for _, e := range c.entries {
		if oldest == nil || e.storedAt.Before(oldest.storedAt) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(c.entries, oldest.key)
		c.logger.Debug("Cache entry evicted", zap.String("key", oldest.key))
	}
}
