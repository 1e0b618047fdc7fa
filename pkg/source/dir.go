package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/article-catalog/pkg/article"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/rs/zerolog"
)

// DirSource reads article documents from files below a root directory.
type DirSource struct {
	root    string
	locator Locator
	logger  zerolog.Logger
}

// NewDir creates a directory document source. The locator is a slash-separated
// path relative to root, for example "articles/{id}.json".
func NewDir(root string, locator Locator) (*DirSource, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if locator.String() == "" {
		return nil, fmt.Errorf("locator is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &DirSource{
		root:    root,
		locator: locator,
		logger:  logging.NewLogger("source-dir"),
	}, nil
}

// Name implements Source.
func (s *DirSource) Name() string {
	return "dir"
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, id string) (article.Article, error) {
	start := time.Now()

	fail := func(class ErrorClass, err error) (article.Article, error) {
		fe := &FetchError{ID: id, Source: s.Name(), Class: class, Err: err}
		observe(s.Name(), start, fe)
		return article.Article{}, fe
	}

	if err := ctx.Err(); err != nil {
		return fail(ClassNetwork, err)
	}

	name := filepath.FromSlash(s.locator.Resolve(id))
	if !filepath.IsLocal(name) {
		return fail(ClassClient, fmt.Errorf("path %q escapes the document root", name))
	}
	path := filepath.Join(s.root, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(ClassNotFound, err)
		}
		return fail(ClassIO, err)
	}

	a, err := article.Decode(data)
	if err != nil {
		return fail(ClassMalformed, err)
	}

	observe(s.Name(), start, nil)
	s.logger.Debug().Str("article_id", id).Str("path", path).Msg("Read article document")
	return a, nil
}
