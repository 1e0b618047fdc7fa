package batch

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/Sternrassler/article-catalog/pkg/source"
	"github.com/rs/zerolog"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of documents fetched at once.
	MaxConcurrency int

	// Timeout bounds each document fetch (0 = no per-document timeout).
	Timeout time.Duration
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
	}
}

// Result is the outcome of fetching one identifier. Exactly one of Article
// and Err is meaningful.
type Result struct {
	ID      string
	Article article.Article
	Err     error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// BatchFetcher fetches documents from a source through a worker pool.
type BatchFetcher struct {
	source source.Source
	config Config
	logger zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(src source.Source, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	return &BatchFetcher{
		source: src,
		config: config,
		logger: logging.NewLogger("batch"),
	}
}

type job struct {
	index int
	id    string
}

type indexedResult struct {
	index int
	Result
}

// FetchAll fetches every identifier and returns one Result per identifier in
// input order. It returns when all fetches have settled.
func (bf *BatchFetcher) FetchAll(ctx context.Context, ids []string) []Result {
	results := make([]Result, len(ids))
	if len(ids) == 0 {
		return results
	}

	start := time.Now()
	workers := bf.config.MaxConcurrency
	if workers > len(ids) {
		workers = len(ids)
	}

	bf.logger.Info().
		Str("source", bf.source.Name()).
		Int("documents", len(ids)).
		Int("workers", workers).
		Msg("Starting parallel document fetch")

	jobs := make(chan job, len(ids))
	for i, id := range ids {
		jobs <- job{index: i, id: id}
	}
	close(jobs)

	out := make(chan indexedResult, len(ids))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go bf.worker(ctx, jobs, out, &wg, w)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	failed := 0
	for r := range out {
		results[r.index] = r.Result
		if r.Err != nil {
			failed++
		}
	}

	bf.logger.Info().
		Str("source", bf.source.Name()).
		Int("fetched", len(ids)-failed).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Document fetch complete")

	return results
}

// worker processes identifiers from the queue until it is drained.
func (bf *BatchFetcher) worker(ctx context.Context, jobs <-chan job, out chan<- indexedResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for j := range jobs {
		// Cancelled: settle the remaining identifiers without fetching them.
		if err := ctx.Err(); err != nil {
			out <- indexedResult{index: j.index, Result: Result{ID: j.id, Err: err}}
			continue
		}

		a, err := bf.fetchOne(ctx, j.id)
		out <- indexedResult{index: j.index, Result: Result{ID: j.id, Article: a, Err: err}}
		processed++
	}

	bf.logger.Debug().
		Int("worker_id", workerID).
		Int("documents_processed", processed).
		Msg("Worker completed")
}

func (bf *BatchFetcher) fetchOne(ctx context.Context, id string) (article.Article, error) {
	if bf.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bf.config.Timeout)
		defer cancel()
	}
	return bf.source.Fetch(ctx, id)
}
