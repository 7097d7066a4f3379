package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rx3lixir/search-service/internal/config"
	"github.com/rx3lixir/search-service/internal/db"
	osclient "github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/internal/opensearch/indexing"
	"github.com/rx3lixir/search-service/internal/opensearch/mapping"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	"github.com/rx3lixir/search-service/internal/opensearch/schema"
	ossearch "github.com/rx3lixir/search-service/internal/opensearch/search"
	"github.com/rx3lixir/search-service/internal/opensearch/suggest"
	"github.com/rx3lixir/search-service/internal/popular"
	"github.com/rx3lixir/search-service/internal/search"
	"github.com/rx3lixir/search-service/internal/server"
	"github.com/rx3lixir/search-service/pkg/health"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

func main() {
	configPath := flag.String("config", os.Getenv("SEARCH_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenSearch клиент
	osClient, err := osclient.New(&cfg.OpenSearch, log)
	if err != nil {
		log.Error("Failed to create opensearch client", "error", err)
		os.Exit(1)
	}

	osHealth := osclient.NewHealthChecker(osClient)
	if err := osHealth.WaitForHealthy(ctx, 5, 3*time.Second); err != nil {
		log.Error("OpenSearch is not available", "error", err)
		os.Exit(1)
	}

	// Создаем индексы для всех типов документов
	mappingManager := mapping.NewManager(osClient, log)
	if err := mappingManager.EnsureIndexes(ctx); err != nil {
		log.Error("Failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	// PostgreSQL опционален: без него конфиги фасетов живут в памяти,
	// аналитика не пишется
	var pool *pgxpool.Pool
	var store db.SearchStore
	if cfg.Postgres.Enabled {
		pool, err = db.CreatePostgresPool(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("Failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = db.NewPostgresStore(pool)
	}

	// Redis для популярных запросов
	popularStore, err := popular.NewStore(&cfg.Redis, log)
	if err != nil {
		log.Error("Failed to create popular query store", "error", err)
		os.Exit(1)
	}
	defer popularStore.Close()

	popularCache := popular.NewCache(popularStore, log)
	if err := popularCache.Warm(ctx); err != nil {
		log.Warn("Failed to warm popular query cache", "error", err)
	}

	// Схемы типов документов и реестр фасетов
	schemaRegistry := schema.NewDefaultRegistry()

	var facetStore facets.Store
	if store != nil {
		facetStore = store
	}
	facetRegistry := facets.NewRegistry(schemaRegistry, facetStore, log)
	if err := facetRegistry.Load(ctx); err != nil {
		log.Warn("Failed to load facet configs, continuing with defaults", "error", err)
	}

	// Поисковый слой
	queryBuilder := ossearch.NewQueryBuilder(facetRegistry, log)
	searcher := ossearch.NewSearcher(osClient, queryBuilder, log)
	ranker := ranking.NewService(log)

	// Движок подсказок
	suggester := suggest.NewEngine(
		func(docType string) suggest.Source {
			return suggest.NewCompletionSource(osClient, docType, log)
		},
		suggest.NewPopularSource(popularCache, log),
		suggest.NewSpellingSource(osClient, log),
		log,
	)

	service := search.NewService(searcher, facetRegistry, ranker, suggester, popularStore, store, log)

	// Индексация документов
	indexer := indexing.NewManager(osClient, log)

	// Периодически обновляем gauge количества документов по коллекциям
	go func() {
		indexer.PublishDocumentCounts(ctx)

		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				indexer.PublishDocumentCounts(ctx)
			}
		}
	}()

	// HTTP API
	httpServer := server.New(cfg.HTTP, service, indexer, log)

	// Сервер метрик
	metrics.SetServiceInfo(cfg.Service.Version, cfg.Service.Name, cfg.Service.Environment)
	metricsServer := metrics.NewMetricsServer(cfg.Metrics.Addr, log)
	metricsServer.StartUptimeUpdater(cfg.Service.Name)

	// Healthcheck сервер
	healthServer := health.NewServer(pool, log,
		health.WithPort(cfg.Health.Addr),
		health.WithServiceInfo(cfg.Service.Name, cfg.Service.Version),
	)
	healthServer.AddEngineCheck(osHealth)
	healthServer.AddRedisCheck(popularStore.Client())

	errCh := make(chan error, 3)

	go func() {
		errCh <- httpServer.Start()
	}()
	go func() {
		errCh <- metricsServer.Start()
	}()
	go func() {
		errCh <- healthServer.Start()
	}()

	log.Info("Search service started",
		"http", cfg.HTTP.Addr,
		"metrics", cfg.Metrics.Addr,
		"health", cfg.Health.Addr,
		"environment", cfg.Service.Environment,
	)

	// Ждем сигнал остановки или фатальную ошибку сервера
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown failed", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown failed", "error", err)
	}

	log.Info("Search service stopped")
}
