package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики для HTTP запросов
var (
	// Счетчик всех HTTP запросов
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Гистограмма времени выполнения HTTP запросов
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10
		},
		[]string{"method", "route"},
	)
)

// Метрики для поиска
var (
	// Счетчик поисковых запросов по профилю ранжирования
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"profile"},
	)

	// Время выполнения поиска
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of search operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"profile"},
	)

	// Количество найденных документов
	SearchResultsTotal = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_results_total",
			Help:    "Number of documents matched per search request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
		},
		[]string{"profile"},
	)

	// Счетчик запросов автодополнения
	SuggestRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "suggest_requests_total",
			Help: "Total number of suggestion requests",
		},
	)

	// Время выполнения автодополнения
	SuggestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggest_duration_seconds",
			Help:    "Duration of suggestion requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// Количество подсказок в ответе
	SuggestResultsTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggest_results_total",
			Help:    "Number of suggestions returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)
)

// Метрики для OpenSearch
var (
	// Счетчик OpenSearch операций
	OpenSearchOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensearch_operations_total",
			Help: "Total number of OpenSearch operations",
		},
		[]string{"operation", "index", "status"},
	)

	// Время выполнения OpenSearch операций
	OpenSearchOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opensearch_operation_duration_seconds",
			Help:    "Duration of OpenSearch operations in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "index"},
	)

	// Количество документов в коллекции
	OpenSearchDocumentsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "opensearch_documents_total",
			Help: "Total number of documents in OpenSearch index",
		},
		[]string{"index"},
	)
)

// Метрики для базы данных
var (
	// Счетчик database операций
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	// Время выполнения database запросов
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)
)

// Системные метрики
var (
	// Информация о сервисе
	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_info",
			Help: "Information about the service",
		},
		[]string{"version", "service", "environment"},
	)

	// Время работы сервиса
	ServiceUptime = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		[]string{"service"},
	)
)

// Хелперы для удобного использования метрик

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSearchRequest записывает метрику поискового запроса
func RecordSearchRequest(profile string, total int64, duration time.Duration) {
	SearchRequestsTotal.WithLabelValues(profile).Inc()
	SearchDuration.WithLabelValues(profile).Observe(duration.Seconds())
	SearchResultsTotal.WithLabelValues(profile).Observe(float64(total))
}

// RecordSuggestRequest записывает метрику запроса автодополнения
func RecordSuggestRequest(count int, duration time.Duration) {
	SuggestRequestsTotal.Inc()
	SuggestDuration.Observe(duration.Seconds())
	SuggestResultsTotal.Observe(float64(count))
}

// RecordOpenSearchOperation записывает метрику OpenSearch операции
func RecordOpenSearchOperation(operation, index, status string, duration time.Duration) {
	OpenSearchOperationsTotal.WithLabelValues(operation, index, status).Inc()
	OpenSearchOperationDuration.WithLabelValues(operation, index).Observe(duration.Seconds())
}

// RecordDatabaseOperation записывает метрику database операции
func RecordDatabaseOperation(operation, table, status string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// UpdateOpenSearchDocuments обновляет количество документов в индексе
func UpdateOpenSearchDocuments(index string, count int64) {
	OpenSearchDocumentsTotal.WithLabelValues(index).Set(float64(count))
}

// SetServiceInfo устанавливает информацию о сервисе
func SetServiceInfo(version, service, environment string) {
	ServiceInfo.WithLabelValues(version, service, environment).Set(1)
}

// UpdateServiceUptime обновляет время работы сервиса
func UpdateServiceUptime(service string, startTime time.Time) {
	ServiceUptime.WithLabelValues(service).Set(time.Since(startTime).Seconds())
}

// StatusFromError возвращает статус на основе ошибки
func StatusFromError(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
