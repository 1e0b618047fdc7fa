package source

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisSource(t *testing.T) (*RedisSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewRedis(client, MustLocator(DefaultRedisLocator))
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	return s, mr
}

func TestNewRedis_Validation(t *testing.T) {
	if _, err := NewRedis(nil, MustLocator(DefaultRedisLocator)); err == nil {
		t.Error("expected error for nil client")
	}
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	if _, err := NewRedis(client, Locator{}); err == nil {
		t.Error("expected error for empty locator")
	}
}

func TestRedisSource_Fetch(t *testing.T) {
	s, mr := newTestRedisSource(t)
	ctx := context.Background()

	mr.Set("articles:news-1", `{"id":"news-1","title":"First","date":"2024-05-01","category":"Tech"}`)
	mr.Set("articles:broken", `not json`)

	a, err := s.Fetch(ctx, "news-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if a.Title != "First" || a.Category != "Tech" || a.Published.IsZero() {
		t.Errorf("unexpected article %+v", a)
	}

	_, err = s.Fetch(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key err = %v, want ErrNotFound", err)
	}

	_, err = s.Fetch(ctx, "broken")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("broken value err = %v, want ErrMalformed", err)
	}
}

func TestRedisSource_Key(t *testing.T) {
	s, _ := newTestRedisSource(t)
	if got := s.Key("news-1"); got != "articles:news-1" {
		t.Errorf("Key = %q", got)
	}
}

func TestRedisSource_ServerDown(t *testing.T) {
	s, mr := newTestRedisSource(t)
	mr.Close()

	_, err := s.Fetch(context.Background(), "news-1")
	if ClassOf(err) != ClassNetwork {
		t.Errorf("class = %q, want network (err %v)", ClassOf(err), err)
	}
}
