package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipebox_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FavoriteToggles counts favorite changes by direction (added, removed).
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_favorite_toggles_total",
		Help: "Total number of favorite membership changes",
	}, []string{"direction"})

	// CommentsAdded counts comments appended to recipes.
	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipebox_comments_added_total",
		Help: "Total number of comments appended to recipes",
	})

	// DuplicateKeyRejections counts writes rejected by a unique index, by field.
	DuplicateKeyRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_duplicate_key_rejections_total",
		Help: "Total number of writes rejected by a unique index",
	}, []string{"field"})

	// FavoriteCountCorrections counts recipes whose favorites count was repaired.
	FavoriteCountCorrections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipebox_favorite_count_corrections_total",
		Help: "Total number of recipes whose favorites count was recomputed to a different value",
	})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_cache_lookups_total",
		Help: "Total number of cache-aside lookups by result",
	}, []string{"result"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
