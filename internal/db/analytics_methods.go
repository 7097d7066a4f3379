package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rx3lixir/search-service/pkg/metrics"
)

// SearchEvent - одно поисковое событие для аналитики.
// Пишется fire-and-forget, чтение и агрегация - забота других сервисов.
type SearchEvent struct {
	SearchID  string
	UserID    string
	Query     string
	Total     int64
	TookMs    int64
	Profile   string
	CreatedAt time.Time
}

const insertSearchEventQuery = `INSERT INTO search_events (search_id, user_id, query, total, took_ms, profile, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`

// InsertSearchEvent записывает поисковое событие.
func (s *PostgresStore) InsertSearchEvent(parentCtx context.Context, event *SearchEvent) error {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	start := time.Now()
	_, err := s.db.Exec(
		ctx,
		insertSearchEventQuery,
		event.SearchID,
		event.UserID,
		event.Query,
		event.Total,
		event.TookMs,
		event.Profile,
		event.CreatedAt,
	)
	metrics.RecordDatabaseOperation("insert", "search_events", metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to insert search event: %w", err)
	}

	return nil
}
