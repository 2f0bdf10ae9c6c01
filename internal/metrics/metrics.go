package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_catalog_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_db_degraded",
			Help: "Database degradation level (0 = healthy, 1 = partial, 2 = fully degraded)",
		},
	)
)

// Scan pass metrics
var (
	ScanPassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_scan_passes_total",
			Help: "Total number of reconciliation passes",
		},
	)

	ScanPassesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_scan_passes_skipped_total",
			Help: "Total number of skipped reconciliation passes",
		},
		[]string{"reason"}, // "degraded", "refresh_failed", "interval"
	)

	ScanPassDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_scan_pass_duration_seconds",
			Help: "Duration of the last reconciliation pass in seconds",
		},
	)

	ScanLastPassTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_scan_last_pass_timestamp",
			Help: "Timestamp of the last completed reconciliation pass",
		},
	)

	FilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_files_scanned_total",
			Help: "Total number of image files scanned",
		},
	)

	FilesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_files_classified_total",
			Help: "Total number of scanned files by classification",
		},
		[]string{"state"}, // "new", "unchanged", "modified"
	)
)

// Filesystem retry metrics
var (
	FilesystemStaleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_fs_stale_errors_total",
			Help: "Total number of NFS stale file handle errors encountered",
		},
	)

	FilesystemRetrySuccess = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_fs_retry_success_total",
			Help: "Total number of file opens that succeeded after retrying",
		},
	)

	FilesystemRetryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_fs_retry_failures_total",
			Help: "Total number of file opens that failed after exhausting retries",
		},
	)
)

// Event bus metrics
var (
	EventsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_events_enqueued_total",
			Help: "Total number of events accepted onto the bus",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_catalog_events_dropped_total",
			Help: "Total number of events dropped for lack of a handler",
		},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_catalog_events_processed_total",
			Help: "Total number of events handled",
		},
		[]string{"kind", "status"},
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_catalog_event_queue_depth",
			Help: "Number of events currently queued on the bus",
		},
	)
)
