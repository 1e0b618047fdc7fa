// Package batch fetches many article documents in parallel.
//
// A fixed worker pool drains a queue of identifiers and produces exactly one
// Result per identifier. Failures are carried in the Result instead of aborting
// the batch, so callers decide what to keep:
//
//	fetcher := batch.NewBatchFetcher(src, batch.DefaultConfig())
//	for _, r := range fetcher.FetchAll(ctx, ids) {
//		if r.Err != nil {
//			continue
//		}
//		use(r.Article)
//	}
//
// The batch fetcher:
//   - Starts min(MaxConcurrency, len(ids)) workers
//   - Never retries a failed identifier
//   - Returns results in the order of the input identifiers
//   - Marks identifiers it never started with the context error on cancellation
package batch
