package popular

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rx3lixir/search-service/pkg/logger"
)

const (
	queriesKey   = "search:popular_queries"
	recordBudget = 2 * time.Second
)

// Config - настройки подключения к Redis
type Config struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueryStat - один популярный запрос со счетчиком
type QueryStat struct {
	Text  string
	Count int64
}

// Store считает частоту поисковых запросов в Redis sorted set
type Store struct {
	rdb *redis.Client
	log logger.Logger
}

func NewStore(cfg *Config, log logger.Logger) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Store{
		rdb: rdb,
		log: log,
	}, nil
}

// Ping проверяет доступность Redis
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Client возвращает низкоуровневый клиент для healthcheck
func (s *Store) Client() *redis.Client {
	return s.rdb
}

// RecordQuery инкрементирует счетчик запроса. Вызывается fire-and-forget:
// ошибка логируется и не влияет на поисковый ответ.
func (s *Store) RecordQuery(query string) {
	query = normalizeQuery(query)
	if query == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordBudget)
	defer cancel()

	if err := s.rdb.ZIncrBy(ctx, queriesKey, 1, query).Err(); err != nil {
		s.log.Warn("Failed to record popular query", "query", query, "error", err)
	}
}

// TopQueries возвращает n самых частых запросов
func (s *Store) TopQueries(ctx context.Context, n int64) ([]QueryStat, error) {
	entries, err := s.rdb.ZRevRangeWithScores(ctx, queriesKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular queries: %w", err)
	}

	stats := make([]QueryStat, 0, len(entries))
	for _, entry := range entries {
		text, ok := entry.Member.(string)
		if !ok || text == "" {
			continue
		}
		stats = append(stats, QueryStat{
			Text:  text,
			Count: int64(entry.Score),
		})
	}

	return stats, nil
}

// Close закрывает соединение с Redis
func (s *Store) Close() error {
	return s.rdb.Close()
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
