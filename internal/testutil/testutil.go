// Package testutil provides testing utilities for the Scrapinghub client.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// APIKey is a fake credential accepted by the mock server.
const APIKey = "0123456789abcdef0123456789abcdef"

// MockServer is a test HTTP server for mocking API responses.
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]map[string]http.HandlerFunc
	requests []RecordedRequest
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	// Form holds url-encoded and multipart form fields of POST requests.
	Form url.Values
	// Files maps multipart file fields to their content.
	Files map[string]string

	Headers  http.Header
	Username string
	Body     []byte
}

// NewMockServer creates a new mock server.
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()

	ms := &MockServer{
		handlers: make(map[string]map[string]http.HandlerFunc),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		rec := RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Headers:  r.Header.Clone(),
			Body:     body,
		}
		rec.Username, _, _ = r.BasicAuth()
		rec.Form, rec.Files = parseForm(r, body)

		ms.mu.Lock()
		ms.requests = append(ms.requests, rec)
		handler, ok := ms.handlers[r.URL.Path][r.Method]
		ms.mu.Unlock()

		if ok {
			r.Body = io.NopCloser(bytes.NewReader(body))
			handler(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}))

	t.Cleanup(func() {
		ms.Close()
	})

	return ms
}

func parseForm(r *http.Request, body []byte) (url.Values, map[string]string) {
	if r.Method != http.MethodPost {
		return nil, nil
	}
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := clone.ParseMultipartForm(32 << 20); err != nil {
			return nil, nil
		}
		files := make(map[string]string)
		for field, headers := range clone.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				continue
			}
			b, _ := io.ReadAll(f)
			f.Close()
			files[field] = string(b)
		}
		return url.Values(clone.MultipartForm.Value), files
	}

	if err := clone.ParseForm(); err != nil {
		return nil, nil
	}
	return clone.PostForm, nil
}

// Handle registers a handler for a specific method and path.
func (ms *MockServer) Handle(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.handlers[path] == nil {
		ms.handlers[path] = make(map[string]http.HandlerFunc)
	}
	ms.handlers[path][method] = handler
}

// HandleJSON registers a handler that returns a JSON response.
func (ms *MockServer) HandleJSON(method, path string, statusCode int, response any) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if response != nil {
			json.NewEncoder(w).Encode(response)
		}
	})
}

// HandleJL registers a handler that returns one JSON line per record.
func (ms *MockServer) HandleJL(method, path string, records ...any) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-jsonlines")
		enc := json.NewEncoder(w)
		for _, rec := range records {
			enc.Encode(rec)
		}
	})
}

// HandleText registers a handler that returns body verbatim.
func (ms *MockServer) HandleText(method, path string, statusCode int, body string) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		io.WriteString(w, body)
	})
}

// Endpoint returns the server URL joined with path.
func (ms *MockServer) Endpoint(path string) string {
	return strings.TrimRight(ms.Server.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

// GetRequests returns all recorded requests.
func (ms *MockServer) GetRequests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RecordedRequest{}, ms.requests...)
}

// RequestsTo returns the recorded requests for path.
func (ms *MockServer) RequestsTo(path string) []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []RecordedRequest
	for _, r := range ms.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the last recorded request.
func (ms *MockServer) LastRequest() *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return &ms.requests[len(ms.requests)-1]
}

// ClearRequests clears all recorded requests.
func (ms *MockServer) ClearRequests() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
}

// AssertRequestCount asserts that a specific number of requests were made.
func (ms *MockServer) AssertRequestCount(t *testing.T, expected int) {
	t.Helper()
	ms.mu.Lock()
	actual := len(ms.requests)
	ms.mu.Unlock()

	if actual != expected {
		t.Errorf("expected %d requests, got %d", expected, actual)
	}
}
