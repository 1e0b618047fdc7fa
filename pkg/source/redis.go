package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisLocator is the key layout used when none is configured.
const DefaultRedisLocator = "articles:{id}"

// RedisSource reads article documents stored as JSON string values.
type RedisSource struct {
	redis   redis.Cmdable
	locator Locator
	logger  zerolog.Logger
}

// NewRedis creates a Redis document source. Keys are derived from the locator.
func NewRedis(client redis.Cmdable, locator Locator) (*RedisSource, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if locator.String() == "" {
		return nil, fmt.Errorf("locator is required")
	}
	return &RedisSource{
		redis:   client,
		locator: locator,
		logger:  logging.NewLogger("source-redis"),
	}, nil
}

// Name implements Source.
func (s *RedisSource) Name() string {
	return "redis"
}

// Key returns the Redis key holding the document for id.
func (s *RedisSource) Key(id string) string {
	return s.locator.Resolve(id)
}

// Fetch implements Source.
func (s *RedisSource) Fetch(ctx context.Context, id string) (article.Article, error) {
	start := time.Now()
	key := s.Key(id)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		class := ClassNetwork
		if errors.Is(err, redis.Nil) {
			class = ClassNotFound
			err = fmt.Errorf("key %s does not exist", key)
		}
		fe := &FetchError{ID: id, Source: s.Name(), Class: class, Err: err}
		observe(s.Name(), start, fe)
		return article.Article{}, fe
	}

	a, err := article.Decode(data)
	if err != nil {
		fe := &FetchError{ID: id, Source: s.Name(), Class: ClassMalformed, Err: err}
		observe(s.Name(), start, fe)
		return article.Article{}, fe
	}

	observe(s.Name(), start, nil)
	s.logger.Debug().Str("article_id", id).Str("key", key).Msg("Fetched article document")
	return a, nil
}
