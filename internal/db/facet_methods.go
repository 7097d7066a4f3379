package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

const (
	// Конфиг целиком лежит в jsonb: структура диапазонов слишком
	// подвижная для реляционных колонок
	upsertFacetConfigQuery = `INSERT INTO facet_configs (name, config, updated_at)
						VALUES ($1, $2, NOW())
						ON CONFLICT (name) DO UPDATE SET config = $2, updated_at = NOW()`

	deleteFacetConfigQuery = `DELETE FROM facet_configs WHERE name = $1`

	listFacetConfigsQuery = `SELECT name, config FROM facet_configs`
)

// UpsertFacetConfig сохраняет или заменяет конфиг фасета.
func (s *PostgresStore) UpsertFacetConfig(parentCtx context.Context, name string, cfg *facets.Config) error {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal facet config %q: %w", name, err)
	}

	start := time.Now()
	_, err = s.db.Exec(ctx, upsertFacetConfigQuery, name, payload)
	metrics.RecordDatabaseOperation("upsert", "facet_configs", metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to upsert facet config %q: %w", name, err)
	}

	return nil
}

// DeleteFacetConfig удаляет конфиг фасета. Возвращает false, если
// конфига с таким именем не было.
func (s *PostgresStore) DeleteFacetConfig(parentCtx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	start := time.Now()
	tag, err := s.db.Exec(ctx, deleteFacetConfigQuery, name)
	metrics.RecordDatabaseOperation("delete", "facet_configs", metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return false, fmt.Errorf("failed to delete facet config %q: %w", name, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListFacetConfigs возвращает все сохраненные конфиги фасетов.
func (s *PostgresStore) ListFacetConfigs(parentCtx context.Context) (map[string]*facets.Config, error) {
	ctx, cancel := context.WithTimeout(parentCtx, 3*time.Second)
	defer cancel()

	start := time.Now()
	rows, err := s.db.Query(ctx, listFacetConfigsQuery)
	metrics.RecordDatabaseOperation("list", "facet_configs", metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to list facet configs: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]*facets.Config)
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan facet config row: %w", err)
		}

		var cfg facets.Config
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal facet config %q: %w", name, err)
		}
		configs[name] = &cfg
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facet configs: %w", err)
	}

	return configs, nil
}
