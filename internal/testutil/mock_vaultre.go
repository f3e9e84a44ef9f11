// Package testutil provides testing utilities for the VaultRE client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines the behavior for a mock VaultRE endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
}

// MockVaultRE is a configurable mock VaultRE API server for testing.
// Responses are keyed by request path; the query string is ignored for
// matching but recorded.
type MockVaultRE struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse

	// APIKey and BearerToken, when set, are required on every request.
	// A wrong API key yields 403, a wrong bearer token 401.
	APIKey      string
	BearerToken string

	requests    []string
	pathCounts  map[string]int
	lastHeaders http.Header
}

// NewMockVaultRE creates and starts a new mock server.
func NewMockVaultRE() *MockVaultRE {
	mock := &MockVaultRE{
		responses:  make(map[string]MockResponse),
		pathCounts: make(map[string]int),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockVaultRE) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r.URL.RequestURI())
	m.pathCounts[r.URL.Path]++
	m.lastHeaders = r.Header.Clone()
	apiKey, token := m.APIKey, m.BearerToken
	resp, ok := m.responses[r.URL.Path]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if apiKey != "" && r.Header.Get("X-Api-Key") != apiKey {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid api key"}`))
		return
	}
	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid token"}`))
		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
		return
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// SetCredentials changes the required API key and bearer token. Empty values
// disable the respective check.
func (m *MockVaultRE) SetCredentials(apiKey, bearerToken string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APIKey = apiKey
	m.BearerToken = bearerToken
}

// URL returns the mock server URL.
func (m *MockVaultRE) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockVaultRE) Close() {
	m.server.Close()
}

// SetResponse configures the response for a path.
func (m *MockVaultRE) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// SetJSON configures a 200 response with the given JSON body.
func (m *MockVaultRE) SetJSON(path, body string) {
	m.SetResponse(path, MockResponse{StatusCode: http.StatusOK, Body: body})
}

// Reset clears all tracking counters.
func (m *MockVaultRE) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.pathCounts = make(map[string]int)
	m.lastHeaders = nil
}

// RequestCount returns the total number of requests received.
func (m *MockVaultRE) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// PathCount returns the number of requests received for a path.
func (m *MockVaultRE) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// Requests returns every request URI received, in order.
func (m *MockVaultRE) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastHeaders returns the headers of the most recent request.
func (m *MockVaultRE) LastHeaders() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders
}
