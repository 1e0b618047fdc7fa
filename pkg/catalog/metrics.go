package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadsTotal counts bulk loads. It never exceeds the number of Catalog instances.
	loadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Total number of bulk article loads",
		},
	)

	// loadDuration tracks how long a bulk load took from first fetch to sorted cache.
	loadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_duration_seconds",
			Help:    "Bulk article load duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// loadFailures counts documents excluded from a load by error class.
	loadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_load_failures_total",
			Help: "Total number of article documents excluded from a load",
		},
		[]string{"error_class"},
	)

	// articlesCached is the size of the most recently populated cache.
	articlesCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_articles_cached",
			Help: "Number of articles held in the catalog cache",
		},
	)

	// queriesTotal counts catalog queries by operation.
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Total number of catalog queries by operation",
		},
		[]string{"operation"}, // "by_id", "paginated", "categories", "by_category"
	)
)
