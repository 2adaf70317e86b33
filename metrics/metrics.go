package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retroboard_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retroboard_http_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	RetryAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retroboard_store_retries_total",
		Help: "Number of retried document store calls",
	})

	RestoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retroboard_restore_document_failures_total",
		Help: "Documents that failed to restore from backup",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retroboard_cache_hits_total",
		Help: "Post list cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retroboard_cache_misses_total",
		Help: "Post list cache misses",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
