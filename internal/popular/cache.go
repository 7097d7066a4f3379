package popular

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rx3lixir/search-service/pkg/logger"
)

const (
	defaultRefreshInterval = time.Hour
	defaultCacheSize       = 200
	refreshBudget          = 5 * time.Second
)

// QuerySource - источник популярных запросов (реализуется Store)
type QuerySource interface {
	TopQueries(ctx context.Context, n int64) ([]QueryStat, error)
}

// Cache держит снимок популярных запросов в памяти. Обновление не чаще
// раза в час и всегда в фоне: чтения никогда не ждут обновления,
// устаревший снимок лучше блокировки.
type Cache struct {
	source     QuerySource
	log        logger.Logger
	interval   time.Duration
	size       int64
	mu         sync.RWMutex
	entries    []QueryStat
	refreshed  time.Time
	refreshing atomic.Bool
}

func NewCache(source QuerySource, log logger.Logger) *Cache {
	return &Cache{
		source:   source,
		log:      log,
		interval: defaultRefreshInterval,
		size:     defaultCacheSize,
	}
}

// WithRefreshInterval настраивает минимальный интервал между обновлениями
func (c *Cache) WithRefreshInterval(interval time.Duration) *Cache {
	if interval > 0 {
		c.interval = interval
	}
	return c
}

// Queries возвращает текущий снимок популярных запросов.
// Если снимок устарел, запускает фоновое обновление и сразу
// отдает то, что есть.
func (c *Cache) Queries() []QueryStat {
	c.mu.RLock()
	entries := c.entries
	stale := time.Since(c.refreshed) >= c.interval
	c.mu.RUnlock()

	if stale && c.refreshing.CompareAndSwap(false, true) {
		go c.refresh()
	}

	return entries
}

// Warm синхронно наполняет кэш при старте сервиса
func (c *Cache) Warm(ctx context.Context) error {
	stats, err := c.source.TopQueries(ctx, c.size)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = stats
	c.refreshed = time.Now()
	c.mu.Unlock()

	c.log.Info("Popular query cache warmed", "entries", len(stats))
	return nil
}

func (c *Cache) refresh() {
	defer c.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), refreshBudget)
	defer cancel()

	stats, err := c.source.TopQueries(ctx, c.size)
	if err != nil {
		c.log.Warn("Popular query cache refresh failed", "error", err)
		return
	}

	c.mu.Lock()
	c.entries = stats
	c.refreshed = time.Now()
	c.mu.Unlock()

	c.log.Debug("Popular query cache refreshed", "entries", len(stats))
}
