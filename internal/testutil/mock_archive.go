// Package testutil provides testing utilities for gogetem.
package testutil

import (
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockArchive is a configurable mock sequence archive for testing. It mimics
// the ENA browser bulk FASTA endpoint: payloads are served gzip-compressed,
// and "nothing for this batch" is an empty success body.
type MockArchive struct {
	server *httptest.Server
	mu     sync.RWMutex

	payloads map[string]string
	failures map[string]int
	statuses map[string]int

	// Tracking
	RequestCount int
	KeyCounts    map[string]int
}

// NewMockArchive creates a new mock archive server.
func NewMockArchive() *MockArchive {
	mock := &MockArchive{
		payloads:  make(map[string]string),
		failures:  make(map[string]int),
		statuses:  make(map[string]int),
		KeyCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")

		mock.mu.Lock()
		mock.RequestCount++
		mock.KeyCounts[key]++
		status := mock.statuses[key]
		failing := mock.failures[key] > 0
		if failing {
			mock.failures[key]--
		}
		payload, exists := mock.payloads[key]
		mock.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		if failing || !exists {
			// Empty success body: the archive's "no data for this batch" convention
			w.WriteHeader(http.StatusOK)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)

		zw := gzip.NewWriter(w)
		zw.Write([]byte(payload))
		zw.Close()
	}))

	return mock
}

// BaseURL returns the mock endpoint URL with a trailing slash, ready to use
// as a fetch client base URL.
func (m *MockArchive) BaseURL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockArchive) Close() {
	m.server.Close()
}

// SetPayload configures the FASTA text served for a batch key.
func (m *MockArchive) SetPayload(key, fasta string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[key] = fasta
}

// FailFirst makes the first n requests for a key return an empty payload
// before the configured payload is served.
func (m *MockArchive) FailFirst(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = n
}

// SetStatus forces an HTTP status code for a key, overriding any payload.
func (m *MockArchive) SetStatus(key string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[key] = code
}

// GetRequestCount returns the total number of requests served.
func (m *MockArchive) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetKeyCount returns the number of requests served for one batch key.
func (m *MockArchive) GetKeyCount(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.KeyCounts[key]
}

// Reset clears all tracking counters.
func (m *MockArchive) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.KeyCounts = make(map[string]int)
}
