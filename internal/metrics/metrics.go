package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Share link and cookie metrics
var (
	ShareLinksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_share_links_created_total",
			Help: "Total number of share links created",
		},
	)

	ShareLinksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_share_links_active",
			Help: "Number of share links that have not expired",
		},
	)

	LinkOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_link_opens_total",
			Help: "Total number of share link opens by result",
		},
		[]string{"result"}, // "ok", "invalid", "expired"
	)

	CookieVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_cookie_verifications_total",
			Help: "Total number of signed cookie verifications by result",
		},
		[]string{"result"},
	)
)

// Object serving metrics
var (
	ObjectBytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_object_bytes_served_total",
			Help: "Total number of object bytes written to clients",
		},
	)

	ObjectRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_object_requests_total",
			Help: "Total number of object requests by kind and status",
		},
		[]string{"kind", "status"}, // kind: "original", "thumbnail", "archive"
	)

	ObjectStreamsStalled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_object_streams_stalled_total",
			Help: "Total number of object responses aborted because the client stopped reading",
		},
		[]string{"kind"},
	)

	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_listings_total",
			Help: "Total number of folder listings by status",
		},
		[]string{"status"},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"type", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	ThumbnailGeneratorRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_generator_running",
			Help: "Whether the thumbnail sweep is currently running (1 = running, 0 = idle)",
		},
	)

	ThumbnailGenerationLastDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_generation_last_duration_seconds",
			Help: "Duration of the last thumbnail sweep in seconds",
		},
	)

	ThumbnailGenerationLastTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_generation_last_timestamp",
			Help: "Unix timestamp of the last thumbnail sweep completion",
		},
	)

	ThumbnailGenerationFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_thumbnail_generation_files",
			Help: "Number of files in the last sweep by status",
		},
		[]string{"status"}, // "generated", "skipped", "failed"
	)
)

// Library metrics
var (
	MediaFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_media_files_total",
			Help: "Total number of original media files by type",
		},
		[]string{"type"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_attempts_total",
			Help: "Total number of retries after a stale file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_failures_total",
			Help: "Total number of operations that exhausted their retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_memory_paused",
			Help: "Whether thumbnail work is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_memory_gc_pauses_total",
			Help: "Total number of times work was paused for memory pressure",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
