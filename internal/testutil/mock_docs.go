// Package testutil provides testing utilities for the article catalog.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines a canned response for one document path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockDocumentServer is a static article document server for testing.
// Documents are served at /articles/{id}.json unless a custom handler is set.
type MockDocumentServer struct {
	server *httptest.Server

	mu        sync.RWMutex
	handlers  map[string]http.HandlerFunc
	requests  map[string]int
	userAgent string
}

// NewMockDocumentServer starts a new mock document server.
func NewMockDocumentServer() *MockDocumentServer {
	mock := &MockDocumentServer{
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		mock.userAgent = r.Header.Get("User-Agent")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the server base URL.
func (m *MockDocumentServer) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockDocumentServer) Close() {
	m.server.Close()
}

// DocumentPath returns the default path for id.
func DocumentPath(id string) string {
	return fmt.Sprintf("/articles/%s.json", id)
}

// SetHandler sets a custom handler for a path.
func (m *MockDocumentServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockDocumentServer) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	})
}

// SetDocument serves doc as JSON at the default path of id.
func (m *MockDocumentServer) SetDocument(id string, doc any) {
	body, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal mock document %s: %v", id, err))
	}
	m.SetResponse(DocumentPath(id), NewDocumentResponse(string(body)))
}

// RequestCount returns how many requests hit path.
func (m *MockDocumentServer) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests across all paths.
func (m *MockDocumentServer) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockDocumentServer) LastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userAgent
}

// NewDocumentResponse creates a 200 OK JSON response.
func NewDocumentResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewStatusResponse creates an empty response with the given status.
func NewStatusResponse(status int) MockResponse {
	return MockResponse{StatusCode: status}
}

// NewFlakyHandler fails with 503 for the first failures requests, then serves body.
func NewFlakyHandler(failures int, body string) http.HandlerFunc {
	var mu sync.Mutex
	seen := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen++
		n := seen
		mu.Unlock()

		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// Document is a convenience article document for tests.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt,omitempty"`
	Image    string `json:"image,omitempty"`
	Date     string `json:"date"`
	Category string `json:"category"`
}
