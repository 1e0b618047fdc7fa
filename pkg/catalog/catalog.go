// Package catalog provides the in-memory article catalog: a load-once cache of
// article documents sorted newest first, with lookup, pagination and category
// filtering on top.
package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/batch"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/Sternrassler/article-catalog/pkg/source"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// loadKey is the single singleflight key; there is only ever one load.
const loadKey = "load"

// Config holds catalog configuration.
type Config struct {
	// Batch configures the parallel bulk load.
	Batch batch.Config
}

// DefaultConfig returns the default catalog configuration.
func DefaultConfig() Config {
	return Config{Batch: batch.DefaultConfig()}
}

// Catalog owns the identifier list and the article cache.
//
// The cache is populated on the first query and never refetched. Documents
// that fail to load are logged and left out for the lifetime of the Catalog.
type Catalog struct {
	ids     []string
	fetcher *batch.BatchFetcher
	source  string
	logger  zerolog.Logger

	flight singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	articles []article.Article
}

// New creates an empty catalog over ids. Nothing is fetched until the first query.
func New(src source.Source, ids []string, cfg Config) *Catalog {
	return &Catalog{
		ids:     slices.Clone(ids),
		fetcher: batch.NewBatchFetcher(src, cfg.Batch),
		source:  src.Name(),
		logger:  logging.NewLogger("catalog"),
	}
}

// IDs returns a copy of the configured identifier list.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

// Loaded reports whether the cache has been populated.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LoadAll populates the cache if needed and returns a copy of it, newest first.
//
// Concurrent callers share one in-flight load. The load is detached from ctx
// cancellation; a caller whose ctx ends stops waiting and gets ctx.Err(), while
// the load completes for everyone else.
func (c *Catalog) LoadAll(ctx context.Context) ([]article.Article, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(articles), nil
}

// ByID returns the first cached article with the given id.
func (c *Catalog) ByID(ctx context.Context, id string) (article.Article, bool, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return article.Article{}, false, err
	}
	queriesTotal.WithLabelValues("by_id").Inc()

	i := slices.IndexFunc(articles, func(a article.Article) bool { return a.ID == id })
	if i < 0 {
		return article.Article{}, false, nil
	}
	return articles[i], true, nil
}

// Paginated returns page (1-based) of the whole cache, limit articles per page.
func (c *Catalog) Paginated(ctx context.Context, page, limit int) (article.Page, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return article.Page{}, err
	}
	queriesTotal.WithLabelValues("paginated").Inc()

	return paginate(articles, page, limit), nil
}

// Categories returns each distinct category once, in order of first
// appearance in the date-sorted cache.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	queriesTotal.WithLabelValues("categories").Inc()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, a := range articles {
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		categories = append(categories, a.Category)
	}
	return categories, nil
}

// ByCategory paginates the articles whose category equals category exactly.
func (c *Catalog) ByCategory(ctx context.Context, category string, page, limit int) (article.Page, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return article.Page{}, err
	}
	queriesTotal.WithLabelValues("by_category").Inc()

	var matching []article.Article
	for _, a := range articles {
		if a.Category == category {
			matching = append(matching, a)
		}
	}
	return paginate(matching, page, limit), nil
}

// Len returns the number of cached articles.
func (c *Catalog) Len(ctx context.Context) (int, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}

// ensureLoaded returns the cache, running the bulk load at most once. The
// returned slice is the cache itself and must not be modified or leaked.
func (c *Catalog) ensureLoaded(ctx context.Context) ([]article.Article, error) {
	c.mu.RLock()
	if c.loaded {
		articles := c.articles
		c.mu.RUnlock()
		return articles, nil
	}
	c.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(loadKey, func() (any, error) {
		// A flight that started after a finished one must not load again.
		c.mu.RLock()
		if c.loaded {
			articles := c.articles
			c.mu.RUnlock()
			return articles, nil
		}
		c.mu.RUnlock()

		articles := c.load(loadCtx)

		c.mu.Lock()
		c.articles = articles
		c.loaded = true
		c.mu.Unlock()
		return articles, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val.([]article.Article), nil
	}
}

// load fetches every identifier, drops failures and sorts newest first.
func (c *Catalog) load(ctx context.Context) []article.Article {
	start := time.Now()
	loadsTotal.Inc()

	c.logger.Info().
		Str("source", c.source).
		Int("documents", len(c.ids)).
		Msg("Loading article catalog")

	results := c.fetcher.FetchAll(ctx, c.ids)

	articles := make([]article.Article, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			class := source.ClassOf(r.Err)
			if class == "" {
				class = "unknown"
			}
			loadFailures.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Err(r.Err).
				Str("article_id", r.ID).
				Str("source", c.source).
				Str("error_class", string(class)).
				Msg("Article document excluded from catalog")
			continue
		}
		articles = append(articles, r.Article)
	}

	// Stable, so equal dates keep identifier-list order.
	slices.SortStableFunc(articles, func(a, b article.Article) int {
		return b.Published.Compare(a.Published)
	})

	loadDuration.Observe(time.Since(start).Seconds())
	articlesCached.Set(float64(len(articles)))

	if len(c.ids) > 0 && len(articles) == 0 {
		c.logger.Warn().
			Int("failed", failed).
			Msg("Every article document failed to load, catalog is empty")
	}
	c.logger.Info().
		Int("loaded", len(articles)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Article catalog loaded")

	return articles
}
