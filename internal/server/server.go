package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rx3lixir/search-service/internal/config"
	"github.com/rx3lixir/search-service/internal/opensearch/indexing"
	"github.com/rx3lixir/search-service/internal/search"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

// Server - основной HTTP API сервис
type Server struct {
	service *search.Service
	indexer *indexing.Manager
	server  *http.Server
	log     logger.Logger
}

// New собирает роутер и HTTP сервер
func New(cfg config.HTTPConfig, service *search.Service, indexer *indexing.Manager, log logger.Logger) *Server {
	s := &Server{
		service: service,
		indexer: indexer,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware(log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/count", s.handleCount)
		r.Get("/suggest", s.handleSuggest)

		r.Route("/facets", func(r chi.Router) {
			r.Get("/", s.handleListFacets)
			r.Post("/", s.handleAddFacet)
			r.Delete("/{name}", s.handleRemoveFacet)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Put("/", s.handleIndexDocument)
			r.Post("/bulk", s.handleBulkIndex)
			r.Delete("/{type}/{id}", s.handleDeleteDocument)
		})
	})

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown грациозно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
