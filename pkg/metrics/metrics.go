// Package metrics exposes the catalog's Prometheus metrics.
// Metrics are defined in the packages that record them (source, catalog)
// and registered on the default registry via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry all catalog metrics are registered on.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Document Metrics (pkg/source):
//   - catalog_document_fetches_total{source, result} (Counter): Fetches by source kind and
//     result ("ok" or an error class: not_found, malformed, client, server, network, io)
//   - catalog_document_fetch_duration_seconds{source} (Histogram): Fetch duration
//   - catalog_document_retries_total{error_class} (Counter): Transport retry attempts
//   - catalog_document_retry_backoff_seconds{error_class} (Histogram): Backoff before a retry
//
// Catalog Metrics (pkg/catalog):
//   - catalog_loads_total (Counter): Bulk loads, at most one per catalog
//   - catalog_load_duration_seconds (Histogram): Bulk load duration
//   - catalog_load_failures_total{error_class} (Counter): Documents excluded from a load
//   - catalog_articles_cached (Gauge): Articles held in the cache
//   - catalog_queries_total{operation} (Counter): Queries by operation
//     (by_id, paginated, categories, by_category)
//
// Example Prometheus Queries:
//
//   # Share of documents excluded from the load
//   sum(catalog_load_failures_total) /
//   (sum(catalog_load_failures_total) + catalog_articles_cached)
//
//   # Failures by class and source
//   sum by (source, result) (catalog_document_fetches_total{result!="ok"})
//
//   # P95 document fetch latency
//   histogram_quantile(0.95, rate(catalog_document_fetch_duration_seconds_bucket[5m]))
