package worker

import (
	"context"
	"sync"
	"time"

	"github.com/geosearch-service/internal/cache"
	"go.uber.org/zap"
)

// CacheJanitor периодически выгребает протухшие записи из кеша поиска,
// чтобы учёт размера оставался точным между вставками
type CacheJanitor struct {
	searchCache *cache.SearchCache
	interval    time.Duration
	logger      *zap.Logger

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewCacheJanitor создает новый CacheJanitor
func NewCacheJanitor(searchCache *cache.SearchCache, interval time.Duration, logger *zap.Logger) *CacheJanitor {
	return &CacheJanitor{
		searchCache: searchCache,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Name возвращает имя воркера
func (j *CacheJanitor) Name() string {
	return "cache-janitor"
}

// Start запускает цикл очистки
func (j *CacheJanitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.searchCache.InvalidateExpired(); removed > 0 {
				j.logger.Debug("Cache janitor pass",
					zap.Int("removed", removed),
					zap.Int("remaining", j.searchCache.Len()))
			}
		}
	}
}

// Stop останавливает воркер
func (j *CacheJanitor) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.stopped {
		return nil
	}
	close(j.stopChan)
	j.stopped = true
	return nil
}
