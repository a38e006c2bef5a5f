package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var (
	// DBQueriesTotal tracks the total number of database queries
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// DBQueryDuration tracks the duration of database queries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	// DBConnectionsOpen tracks the number of open database connections
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of established connections both in use and idle",
		},
	)

	// DBConnectionsInUse tracks the number of connections currently in use
	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of connections currently in use",
		},
	)

	// DBConnectionsIdle tracks the number of idle connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle connections",
		},
	)
)

// Forecast pipeline metrics
var (
	// ForecastFetchesTotal tracks upstream weather API calls
	ForecastFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_fetches_total",
			Help: "Total number of upstream forecast API requests",
		},
		[]string{"endpoint", "status"},
	)

	// ForecastFetchDuration tracks upstream weather API latency
	ForecastFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_fetch_duration_seconds",
			Help:    "Duration of upstream forecast API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CacheHitsTotal counts forecast cache hits by endpoint
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_cache_hits_total",
			Help: "Total number of forecast cache hits",
		},
		[]string{"endpoint"},
	)

	// CacheMissesTotal counts forecast cache misses by endpoint
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_cache_misses_total",
			Help: "Total number of forecast cache misses",
		},
		[]string{"endpoint"},
	)
)

// Scoring metrics
var (
	// ScoredWindowsTotal counts every window run through the drying scorer
	ScoredWindowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scored_windows_total",
			Help: "Total number of drying windows scored",
		},
	)

	// UnsafeWindowsTotal counts windows rejected by the hard rain veto
	UnsafeWindowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unsafe_windows_total",
			Help: "Total number of windows vetoed for rain risk",
		},
	)

	// WeightUpdatesTotal counts SGD weight updates applied from feedback
	WeightUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weight_updates_total",
			Help: "Total number of weight vector updates from user feedback",
		},
	)
)

// Application metrics
var (
	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linedry_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linedry_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

// RecordDBQuery records a database query execution
func RecordDBQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}

// RecordForecastFetch records an upstream forecast API request
func RecordForecastFetch(endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ForecastFetchesTotal.WithLabelValues(endpoint, status).Inc()
	ForecastFetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(open, inUse, idle int) {
	DBConnectionsOpen.Set(float64(open))
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}
