package facets

import (
	"context"
	"fmt"
	"sync"

	"github.com/rx3lixir/search-service/internal/opensearch/schema"
	"github.com/rx3lixir/search-service/pkg/errs"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Store - персистентное хранилище конфигов фасетов (реализуется в internal/db)
type Store interface {
	UpsertFacetConfig(ctx context.Context, name string, cfg *Config) error
	DeleteFacetConfig(ctx context.Context, name string) (bool, error)
	ListFacetConfigs(ctx context.Context) (map[string]*Config, error)
}

// Registry хранит конфиги фасетов. Админские мутации атомарны с точки
// зрения читателей: читатель видит либо старый конфиг целиком, либо новый.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
	schemas *schema.Registry
	store   Store
	log     logger.Logger
}

func NewRegistry(schemas *schema.Registry, store Store, log logger.Logger) *Registry {
	// Дефолтные фасеты работают и без хранилища; Load поверх них
	// накатывает сохраненные админом конфиги
	configs := make(map[string]Config)
	for name, cfg := range DefaultConfigs() {
		configs[name] = cfg
	}

	return &Registry{
		configs: configs,
		schemas: schemas,
		store:   store,
		log:     log,
	}
}

// Load подтягивает сохраненные конфиги из хранилища
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	stored, err := r.store.ListFacetConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load facet configs: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, cfg := range stored {
		if err := cfg.Validate(); err != nil {
			r.log.Warn("Skipping invalid stored facet config", "facet", name, "error", err)
			continue
		}
		r.configs[name] = *cfg
	}

	r.log.Info("Facet configs loaded", "count", len(r.configs))
	return nil
}

// Add добавляет или заменяет конфиг фасета (upsert)
func (r *Registry) Add(ctx context.Context, name string, cfg Config) error {
	if name == "" {
		return errs.NewConfiguration("facet", "name is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// Поле фасета обязано существовать в схеме хотя бы одного типа
	if !r.schemas.HasField(cfg.Field) {
		return errs.NewConfiguration("facet "+name, "field not present in any document schema: "+cfg.Field)
	}

	if r.store != nil {
		if err := r.store.UpsertFacetConfig(ctx, name, &cfg); err != nil {
			return fmt.Errorf("failed to persist facet config %q: %w", name, err)
		}
	}

	r.mu.Lock()
	r.configs[name] = cfg
	r.mu.Unlock()

	r.log.Info("Facet config upserted", "facet", name, "field", cfg.Field, "type", cfg.Type)
	return nil
}

// Remove удаляет конфиг фасета. Возвращает false, если его не было.
func (r *Registry) Remove(ctx context.Context, name string) (bool, error) {
	if r.store != nil {
		if _, err := r.store.DeleteFacetConfig(ctx, name); err != nil {
			return false, fmt.Errorf("failed to delete facet config %q: %w", name, err)
		}
	}

	r.mu.Lock()
	_, found := r.configs[name]
	delete(r.configs, name)
	r.mu.Unlock()

	if found {
		r.log.Info("Facet config removed", "facet", name)
	}
	return found, nil
}

// Get возвращает конфиг фасета по имени
func (r *Registry) Get(name string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[name]
	return cfg, ok
}

// Names возвращает имена всех настроенных фасетов
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	return names
}
