package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest captures what the fake Drupal server received.
type RecordedRequest struct {
	Path          string
	Format        string
	Authorization string
}

// DrupalServer is an httptest server that answers Drupal REST paths from
// registered fixtures and records every request.
type DrupalServer struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewDrupalServer starts a fake Drupal site that is closed with the test.
// Unregistered paths answer 404 with a Drupal-style JSON error body.
func NewDrupalServer(t testing.TB) *DrupalServer {
	t.Helper()

	s := &DrupalServer{routes: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *DrupalServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Path:          r.URL.Path,
		Format:        r.URL.Query().Get("_format"),
		Authorization: r.Header.Get("Authorization"),
	})
	handler, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"No route found"}`))
		return
	}
	handler(w, r)
}

// Handle registers a custom handler for path.
func (s *DrupalServer) Handle(path string, handler http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = handler
}

// JSON serves body encoded as JSON at path.
func (s *DrupalServer) JSON(t testing.TB, path string, body any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal fixture for %s: %v", path, err)
	}
	s.Raw(path, http.StatusOK, "application/json", payload)
}

// Raw serves a fixed status and body at path.
func (s *DrupalServer) Raw(path string, status int, contentType string, body []byte) {
	s.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
}

// File serves content as a binary download at path.
func (s *DrupalServer) File(path string, content []byte) {
	s.Raw(path, http.StatusOK, "application/octet-stream", content)
}

// Requests returns a copy of every request received so far.
func (s *DrupalServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns how many requests hit path.
func (s *DrupalServer) Count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}
