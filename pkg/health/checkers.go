package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// EngineHealthChecker интерфейс для проверки здоровья поискового движка
type EngineHealthChecker interface {
	Check(ctx context.Context) error
}

// EngineClusterReporter - опциональное расширение EngineHealthChecker:
// сводка по кластеру движка для детализации health ответа
type EngineClusterReporter interface {
	ClusterSummary(ctx context.Context) (map[string]any, bool, error)
}

// PostgresChecker проверка PostgreSQL через pgxpool
func PostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()

		// Пингуем базу
		err := pool.Ping(ctx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		// Получаем статистику пула
		stats := pool.Stat()

		return CheckResult{
			Status: StatusUp,
			Details: map[string]any{
				"duration_ms":    duration.Milliseconds(),
				"total_conns":    stats.TotalConns(),
				"idle_conns":     stats.IdleConns(),
				"acquired_conns": stats.AcquiredConns(),
			},
		}
	})
}

// EngineChecker проверка доступности поискового движка
func EngineChecker(engine EngineHealthChecker) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()

		err := engine.Check(ctx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		details := map[string]any{
			"duration_ms": duration.Milliseconds(),
		}

		// Ping прошел; если движок умеет отдавать состояние кластера,
		// добавляем его в детали и учитываем в статусе
		if reporter, ok := engine.(EngineClusterReporter); ok {
			summary, healthy, sErr := reporter.ClusterSummary(ctx)
			if sErr != nil {
				details["cluster_error"] = sErr.Error()
			} else {
				for k, v := range summary {
					details[k] = v
				}
				if !healthy {
					return CheckResult{
						Status:  StatusDown,
						Error:   "engine cluster is degraded",
						Details: details,
					}
				}
			}
		}

		return CheckResult{
			Status:  StatusUp,
			Details: details,
		}
	})
}

// RedisChecker проверка Redis
func RedisChecker(rdb *redis.Client) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()

		err := rdb.Ping(ctx).Err()
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		return CheckResult{
			Status: StatusUp,
			Details: map[string]any{
				"duration_ms": duration.Milliseconds(),
			},
		}
	})
}
