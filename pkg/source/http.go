package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultMaxBodyBytes caps the size of a single article document.
const DefaultMaxBodyBytes = 1 << 20

// HTTPConfig holds the HTTP document source configuration.
type HTTPConfig struct {
	// BaseURL is prepended to the resolved locator (e.g. "https://static.example.com").
	BaseURL string

	// Locator maps an identifier to a request path.
	Locator Locator

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// RateLimit paces outgoing requests in requests per second (0 = unlimited).
	RateLimit float64

	// Retry applies to server and network errors only.
	Retry RetryConfig

	// MaxBodyBytes rejects larger documents as malformed.
	MaxBodyBytes int64
}

// DefaultHTTPConfig returns a configuration serving "/articles/{id}.json" under baseURL.
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:      baseURL,
		Locator:      MustLocator("/articles/{id}.json"),
		UserAgent:    "article-catalog/0.1.0",
		Timeout:      30 * time.Second,
		Retry:        DefaultRetryConfig(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// HTTPSource fetches article documents from a static document server.
type HTTPSource struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     HTTPConfig
	logger     zerolog.Logger
}

// NewHTTP creates an HTTP document source.
func NewHTTP(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Locator.String() == "" {
		return nil, fmt.Errorf("locator is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be >= 0 (got %v)", cfg.RateLimit)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	s := &HTTPSource{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logging.NewLogger("source-http"),
	}
	if cfg.RateLimit > 0 {
		// Burst of one spaces requests evenly instead of letting them bunch up.
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s, nil
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return "http"
}

// URL returns the document URL for id.
func (s *HTTPSource) URL(id string) string {
	return s.config.BaseURL + s.config.Locator.ResolvePath(id)
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, id string) (article.Article, error) {
	start := time.Now()
	docURL := s.URL(id)
	logger := s.logger.With().Str("article_id", id).Str("url", docURL).Logger()

	var (
		body   []byte
		status int
	)
	err := retryWithBackoff(ctx, s.config.Retry, logger, func() error {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return &FetchError{Class: ClassNetwork, Err: fmt.Errorf("rate limiter: %w", err)}
			}
		}
		var getErr error
		body, status, getErr = s.get(ctx, docURL)
		return getErr
	})
	if err != nil {
		fe := wrap(id, s.Name(), err)
		observe(s.Name(), start, fe)
		return article.Article{}, fe
	}

	a, err := article.Decode(body)
	if err != nil {
		fe := &FetchError{ID: id, Source: s.Name(), Class: ClassMalformed, StatusCode: status, Err: err}
		observe(s.Name(), start, fe)
		return article.Article{}, fe
	}

	observe(s.Name(), start, nil)
	logger.Debug().Dur("duration", time.Since(start)).Msg("Fetched article document")
	return a, nil
}

// get performs one GET and classifies the outcome. Any 2xx status is a success.
func (s *HTTPSource) get(ctx context.Context, docURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, 0, &FetchError{Class: ClassClient, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Class: ClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, resp.StatusCode, &FetchError{
			Class:      classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, &FetchError{Class: ClassNetwork, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(body)) > s.config.MaxBodyBytes {
		return nil, resp.StatusCode, &FetchError{
			Class:      ClassMalformed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("document exceeds %d bytes", s.config.MaxBodyBytes),
		}
	}
	return body, resp.StatusCode, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (s *HTTPSource) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// classifyStatus maps a non-2xx status code to an error class.
func classifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return ClassNotFound
	case code >= 500:
		return ClassServer
	default:
		return ClassClient
	}
}
