package source

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of document fetch failures.
type ErrorClass string

const (
	// ClassNotFound means the document does not exist at its location (404/410, missing key or file).
	ClassNotFound ErrorClass = "not_found"

	// ClassMalformed means the document was retrieved but is not a valid article.
	ClassMalformed ErrorClass = "malformed"

	// ClassClient represents other 4xx responses and invalid identifiers.
	ClassClient ErrorClass = "client"

	// ClassServer represents 5xx responses.
	ClassServer ErrorClass = "server"

	// ClassNetwork represents transport failures and timeouts.
	ClassNetwork ErrorClass = "network"

	// ClassIO represents local read failures other than a missing file.
	ClassIO ErrorClass = "io"
)

var (
	// ErrNotFound matches any FetchError of class ClassNotFound via errors.Is.
	ErrNotFound = errors.New("document not found")

	// ErrMalformed matches any FetchError of class ClassMalformed via errors.Is.
	ErrMalformed = errors.New("malformed document")

	// ErrRetryExhausted is returned when all attempts for one document failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context ends during retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// FetchError describes why one document could not be retrieved.
type FetchError struct {
	ID         string
	Source     string
	Class      ErrorClass
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %q from %s: %s", e.ID, e.Source, e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports class sentinels so callers can test errors.Is(err, ErrNotFound).
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Class == ClassNotFound
	case ErrMalformed:
		return e.Class == ClassMalformed
	default:
		return false
	}
}

// ClassOf returns the class of the first FetchError in err's chain, or "" if there is none.
func ClassOf(err error) ErrorClass {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Class
	}
	return ""
}

// shouldRetry determines if a failure class is worth another attempt.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ClassServer, ClassNetwork:
		return true
	default:
		// Not-found, malformed and client errors will not change on retry.
		return false
	}
}

// wrap returns err as a FetchError for id, keeping an existing classification.
func wrap(id, sourceName string, err error) *FetchError {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return &FetchError{ID: id, Source: sourceName, Class: ClassNetwork, Err: err}
	}
	fe.ID = id
	fe.Source = sourceName
	return fe
}
