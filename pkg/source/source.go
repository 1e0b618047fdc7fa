// Package source retrieves article documents, one JSON document per identifier,
// from a static document server, a Redis instance or a local directory.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IDPlaceholder is substituted with the article identifier by a Locator.
const IDPlaceholder = "{id}"

// Prometheus metrics for document retrieval.
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_document_fetches_total",
		Help: "Total article document fetches by source and result",
	}, []string{"source", "result"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_document_fetch_duration_seconds",
		Help:    "Article document fetch duration in seconds by source",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"source"})
)

// Source retrieves the article document for one identifier.
type Source interface {
	// Fetch returns the decoded article or a *FetchError.
	Fetch(ctx context.Context, id string) (article.Article, error)

	// Name identifies the source kind in logs and metrics.
	Name() string
}

// Locator derives a document location from an identifier using a template
// such as "/articles/{id}.json" or "articles:{id}".
type Locator struct {
	template string
}

// NewLocator validates a location template.
func NewLocator(template string) (Locator, error) {
	if !strings.Contains(template, IDPlaceholder) {
		return Locator{}, fmt.Errorf("locator template %q must contain %s", template, IDPlaceholder)
	}
	return Locator{template: template}, nil
}

// MustLocator is like NewLocator but panics on an invalid template.
func MustLocator(template string) Locator {
	l, err := NewLocator(template)
	if err != nil {
		panic(err)
	}
	return l
}

// Resolve substitutes id into the template verbatim.
func (l Locator) Resolve(id string) string {
	return strings.ReplaceAll(l.template, IDPlaceholder, id)
}

// ResolvePath substitutes the path-escaped id, for use in URLs.
func (l Locator) ResolvePath(id string) string {
	return strings.ReplaceAll(l.template, IDPlaceholder, url.PathEscape(id))
}

// String returns the template.
func (l Locator) String() string {
	return l.template
}

// observe records the outcome of a single Fetch.
func observe(sourceName string, start time.Time, err error) {
	fetchDuration.WithLabelValues(sourceName).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = string(ClassOf(err))
	}
	fetchesTotal.WithLabelValues(sourceName, result).Inc()
}
