package source

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	err := &FetchError{ID: "news-1", Source: "http", Class: ClassServer, StatusCode: 503, Err: errors.New("503 Service Unavailable")}
	msg := err.Error()
	for _, want := range []string{`"news-1"`, "http", "server", "status 503", "Service Unavailable"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	bare := (&FetchError{ID: "x", Source: "dir", Class: ClassIO}).Error()
	if strings.Contains(bare, "status") {
		t.Errorf("Error() without status code = %q", bare)
	}
}

func TestFetchError_IsClassSentinels(t *testing.T) {
	tests := []struct {
		class       ErrorClass
		notFound    bool
		malformed   bool
		shouldRetry bool
	}{
		{class: ClassNotFound, notFound: true},
		{class: ClassMalformed, malformed: true},
		{class: ClassClient},
		{class: ClassIO},
		{class: ClassServer, shouldRetry: true},
		{class: ClassNetwork, shouldRetry: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			err := fmt.Errorf("outer: %w", &FetchError{ID: "a", Class: tt.class})
			if got := errors.Is(err, ErrNotFound); got != tt.notFound {
				t.Errorf("Is(ErrNotFound) = %v, want %v", got, tt.notFound)
			}
			if got := errors.Is(err, ErrMalformed); got != tt.malformed {
				t.Errorf("Is(ErrMalformed) = %v, want %v", got, tt.malformed)
			}
			if got := shouldRetry(tt.class); got != tt.shouldRetry {
				t.Errorf("shouldRetry = %v, want %v", got, tt.shouldRetry)
			}
			if got := ClassOf(err); got != tt.class {
				t.Errorf("ClassOf = %q, want %q", got, tt.class)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{Class: ClassNetwork, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("FetchError does not unwrap to its cause")
	}
}

func TestClassOf_PlainError(t *testing.T) {
	if got := ClassOf(errors.New("plain")); got != "" {
		t.Errorf("ClassOf(plain) = %q, want empty", got)
	}
	if got := ClassOf(nil); got != "" {
		t.Errorf("ClassOf(nil) = %q, want empty", got)
	}
}

func TestWrap(t *testing.T) {
	fe := wrap("b", "redis", &FetchError{Class: ClassNotFound, Err: errors.New("missing")})
	if fe.ID != "b" || fe.Source != "redis" || fe.Class != ClassNotFound {
		t.Errorf("wrap kept %+v", fe)
	}

	plain := wrap("c", "http", errors.New("boom"))
	if plain.Class != ClassNetwork || plain.ID != "c" {
		t.Errorf("wrap(plain) = %+v, want network class", plain)
	}
}
