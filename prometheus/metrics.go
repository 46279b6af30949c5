package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_register_total",
			Help: "Total number of user registrations",
		},
	)

	// KPI master operation counter
	KpiOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_master_operations_total",
			Help: "Total number of KPI master operations",
		},
		[]string{"operation"}, // "add", "update", "delete", "list", "instantiate"
	)

	// Tree build counter
	TreeBuildCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_tree_builds_total",
			Help: "Total number of KPI tree builds served",
		},
	)

	// Summary counter
	SummaryCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_summary_requests_total",
			Help: "Total number of dashboard summary requests",
		},
	)

	// Value save counter (targets/actuals upserts)
	ValueSaveCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_value_saves_total",
			Help: "Total number of target/actual value upserts",
		},
		[]string{"kind"}, // "target" or "actual"
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpi_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpi_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kpi_active_tokens",
			Help: "Number of currently active session tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kpi_info",
			Help: "Information about the KPI dashboard service",
		},
		[]string{"version"},
	)

	// Active tenants
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kpi_active_tenants",
			Help: "Number of currently active tenants",
		},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(KpiOperationCounter)
	prometheus.MustRegister(TreeBuildCounter)
	prometheus.MustRegister(SummaryCounter)
	prometheus.MustRegister(ValueSaveCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(ActiveTenantsGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordKpiOperation records a KPI master operation
func RecordKpiOperation(operation string) {
	KpiOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordValueSave records a target or actual value upsert
func RecordValueSave(kind string) {
	ValueSaveCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int) {
	ActiveTenantsGauge.Set(float64(count))
}
