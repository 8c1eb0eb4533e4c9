package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP метрики webhook-сервера
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// =============================================================================
// Метрики команд бота
// =============================================================================

// CommandsTotal - счётчик выполненных команд
// status: ok | error | unknown
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Total number of bot commands processed",
	},
	[]string{"command", "status"},
)

// =============================================================================
// Метрики каталога BreweryDB
// =============================================================================

// CatalogRequestsTotal - счётчик запросов к внешнему каталогу
var CatalogRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total number of catalog API requests",
	},
	[]string{"operation", "status"},
)

// CatalogRequestDuration - время ответа каталога
var CatalogRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Duration of catalog API requests in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"operation"},
)

// RecordCommand фиксирует исход одной команды бота
func RecordCommand(command, status string) {
	CommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordCatalogRequest фиксирует один запрос к каталогу
func RecordCatalogRequest(operation, status string, durationSec float64) {
	CatalogRequestsTotal.WithLabelValues(operation, status).Inc()
	CatalogRequestDuration.WithLabelValues(operation).Observe(durationSec)
}
