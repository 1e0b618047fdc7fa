package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/source"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubSource fails identifiers starting with "bad" and tracks concurrency.
type stubSource struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32

	mu    sync.Mutex
	calls map[string]int
}

func newStubSource(delay time.Duration) *stubSource {
	return &stubSource{delay: delay, calls: make(map[string]int)}
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context, id string) (article.Article, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls[id]++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return article.Article{}, &source.FetchError{ID: id, Class: source.ClassNetwork, Err: ctx.Err()}
		}
	}
	if len(id) >= 3 && id[:3] == "bad" {
		return article.Article{}, &source.FetchError{ID: id, Class: source.ClassNotFound, Err: source.ErrNotFound}
	}
	return article.Article{ID: id, Title: id, Date: "2024-01-01"}, nil
}

func TestNewBatchFetcher_Defaults(t *testing.T) {
	bf := NewBatchFetcher(newStubSource(0), Config{MaxConcurrency: -1, Timeout: -time.Second})
	if bf.config.MaxConcurrency != 10 {
		t.Errorf("MaxConcurrency = %d, want 10", bf.config.MaxConcurrency)
	}
	if bf.config.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", bf.config.Timeout)
	}
}

func TestFetchAll_ResultsInInputOrder(t *testing.T) {
	src := newStubSource(time.Millisecond)
	bf := NewBatchFetcher(src, Config{MaxConcurrency: 3})

	ids := []string{"a", "bad-1", "c", "d", "bad-2", "f", "g"}
	results := bf.FetchAll(context.Background(), ids)

	if len(results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(results), len(ids))
	}
	for i, r := range results {
		if r.ID != ids[i] {
			t.Errorf("results[%d].ID = %q, want %q", i, r.ID, ids[i])
		}
		wantOK := ids[i][0] != 'b'
		if r.OK() != wantOK {
			t.Errorf("results[%d] OK = %v, want %v (err %v)", i, r.OK(), wantOK, r.Err)
		}
		if !wantOK && !errors.Is(r.Err, source.ErrNotFound) {
			t.Errorf("results[%d].Err = %v, want not found", i, r.Err)
		}
		if wantOK && r.Article.ID != ids[i] {
			t.Errorf("results[%d].Article.ID = %q", i, r.Article.ID)
		}
	}
}

func TestFetchAll_EachIdentifierOnce(t *testing.T) {
	src := newStubSource(0)
	bf := NewBatchFetcher(src, DefaultConfig())

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("news-%d", i)
	}
	bf.FetchAll(context.Background(), ids)

	for _, id := range ids {
		if n := src.calls[id]; n != 1 {
			t.Errorf("%s fetched %d times, want 1", id, n)
		}
	}
}

func TestFetchAll_RespectsMaxConcurrency(t *testing.T) {
	src := newStubSource(10 * time.Millisecond)
	bf := NewBatchFetcher(src, Config{MaxConcurrency: 2})

	ids := []string{"a", "b", "c", "d", "e", "f"}
	bf.FetchAll(context.Background(), ids)

	if peak := src.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestFetchAll_RunsInParallel(t *testing.T) {
	src := newStubSource(50 * time.Millisecond)
	bf := NewBatchFetcher(src, Config{MaxConcurrency: 8})

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	start := time.Now()
	bf.FetchAll(context.Background(), ids)

	// Sequential would take 400ms.
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("FetchAll took %v, expected parallel fetches", elapsed)
	}
	if peak := src.peak.Load(); peak < 2 {
		t.Errorf("peak concurrency = %d, expected parallel fetches", peak)
	}
}

func TestFetchAll_Empty(t *testing.T) {
	bf := NewBatchFetcher(newStubSource(0), DefaultConfig())
	if results := bf.FetchAll(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d results for no identifiers", len(results))
	}
}

func TestFetchAll_PerDocumentTimeout(t *testing.T) {
	src := newStubSource(time.Second)
	bf := NewBatchFetcher(src, Config{MaxConcurrency: 2, Timeout: 20 * time.Millisecond})

	results := bf.FetchAll(context.Background(), []string{"a", "b"})
	for _, r := range results {
		if r.OK() {
			t.Errorf("%s should have timed out", r.ID)
		}
		if source.ClassOf(r.Err) != source.ClassNetwork {
			t.Errorf("%s class = %q, want network", r.ID, source.ClassOf(r.Err))
		}
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	src := newStubSource(0)
	bf := NewBatchFetcher(src, Config{MaxConcurrency: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids := []string{"a", "b", "c"}
	results := bf.FetchAll(ctx, ids)
	if len(results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(results), len(ids))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s err = %v, want context.Canceled", r.ID, r.Err)
		}
	}
	if len(src.calls) != 0 {
		t.Errorf("source called %d times after cancellation", len(src.calls))
	}
}
