// Package article defines the article record served by the catalog and its
// JSON document format.
package article

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalid indicates a document that decoded but failed validation.
	ErrInvalid = errors.New("invalid article")

	// ErrBadDate indicates a date field that matches none of the accepted layouts.
	ErrBadDate = errors.New("unparsable article date")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Article is a single catalog entry as published in its JSON document.
type Article struct {
	// ID is the opaque article identifier.
	ID string `json:"id"`

	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`

	// Image is a reference (URL or path) to the lead image.
	Image string `json:"image"`

	// Date is kept verbatim for display. Published holds the parsed value.
	// It is the only required field since the catalog sorts on it.
	Date     string `json:"date" validate:"required"`
	Category string `json:"category"`

	// Published is derived from Date by Validate and never serialized.
	Published time.Time `json:"-"`
}

// Validate checks that Date is present and parses it into Published.
func (a *Article) Validate() error {
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	published, err := ParseDate(a.Date)
	if err != nil {
		return err
	}
	a.Published = published
	return nil
}

// Decode parses a JSON document into a validated Article.
func Decode(data []byte) (Article, error) {
	var a Article
	if err := json.Unmarshal(data, &a); err != nil {
		return Article{}, fmt.Errorf("decode article: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Article{}, err
	}
	return a, nil
}

// ParseDate parses an ISO-8601 style timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// Page is one page of query results.
type Page struct {
	Articles []Article `json:"articles"`

	// TotalPages is ceil(matching / limit) over the whole matching set.
	TotalPages int `json:"totalPages"`

	// CurrentPage echoes the requested page number, unclamped.
	CurrentPage int `json:"currentPage"`
}
