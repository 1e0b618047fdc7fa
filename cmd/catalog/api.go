package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/catalog"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/Sternrassler/article-catalog/pkg/metrics"
	"github.com/rs/zerolog"
)

// api serves the catalog over HTTP.
type api struct {
	catalog      *catalog.Catalog
	defaultLimit int
	logger       zerolog.Logger
}

func newAPI(c *catalog.Catalog, defaultLimit int) *api {
	return &api{
		catalog:      c,
		defaultLimit: defaultLimit,
		logger:       logging.NewLogger("api"),
	}
}

// routes returns the HTTP handler for all endpoints.
func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/articles", a.listHandler)
	mux.HandleFunc("GET /api/articles/{id}", a.articleHandler)
	mux.HandleFunc("GET /api/categories", a.categoriesHandler)
	return a.logRequests(mux)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// listHandler serves GET /api/articles?page=&limit=[&category=].
func (a *api) listHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := positiveParam(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page: "+err.Error())
		return
	}
	limit, err := positiveParam(q.Get("limit"), a.defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit: "+err.Error())
		return
	}

	// Only an absent parameter selects every category.
	if !q.Has("category") {
		p, err := a.catalog.Paginated(r.Context(), page, limit)
		if err != nil {
			a.queryFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	p, err := a.catalog.ByCategory(r.Context(), q.Get("category"), page, limit)
	if err != nil {
		a.queryFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// articleHandler serves GET /api/articles/{id}.
func (a *api) articleHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	art, found, err := a.catalog.ByID(r.Context(), id)
	if err != nil {
		a.queryFailed(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("article %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// categoriesHandler serves GET /api/categories.
func (a *api) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := a.catalog.Categories(r.Context())
	if err != nil {
		a.queryFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// queryFailed reports a query that ended because the request context did.
func (a *api) queryFailed(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Request ended before the catalog was loaded")
	writeError(w, http.StatusServiceUnavailable, "catalog not available")
}

// positiveParam parses an optional positive integer query parameter.
func positiveParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n < 1 {
		return 0, errors.New("must be >= 1")
	}
	return n, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		a.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
