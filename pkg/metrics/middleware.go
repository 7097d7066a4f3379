package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rx3lixir/search-service/pkg/logger"
)

// HTTPMiddleware собирает метрики для каждого HTTP запроса
func HTTPMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			// Паттерн маршрута известен только после роутинга
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			RecordHTTPRequest(r.Method, route, ww.Status(), duration)

			// Логируем только медленные и неудачные запросы
			if duration > time.Second || ww.Status() >= 500 {
				log.Warn("Slow or failed request",
					"method", r.Method,
					"route", route,
					"status", ww.Status(),
					"duration", duration,
				)
			}
		})
	}
}
