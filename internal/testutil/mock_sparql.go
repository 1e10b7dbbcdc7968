package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/dorbarker/gogetem/pkg/uniprot"
)

// MockKnowledgeBase is a mock SPARQL endpoint serving configured records in
// the SPARQL 1.1 JSON results format.
type MockKnowledgeBase struct {
	server *httptest.Server
	mu     sync.RWMutex

	records []uniprot.Record
	status  int

	// Tracking
	RequestCount int
	LastQuery    string
}

// NewMockKnowledgeBase creates a new mock endpoint serving the records.
func NewMockKnowledgeBase(records ...uniprot.Record) *MockKnowledgeBase {
	mock := &MockKnowledgeBase{records: records}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.PostFormValue("query")
		status := mock.status
		rows := mock.records
		mock.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.WriteHeader(http.StatusOK)
		w.Write(encodeBindings(rows))
	}))

	return mock
}

// URL returns the mock endpoint URL.
func (m *MockKnowledgeBase) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockKnowledgeBase) Close() {
	m.server.Close()
}

// SetRecords replaces the records served by the endpoint.
func (m *MockKnowledgeBase) SetRecords(records ...uniprot.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetStatus forces an HTTP status code, overriding the result set.
func (m *MockKnowledgeBase) SetStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// GetRequestCount returns the number of queries served.
func (m *MockKnowledgeBase) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastQuery returns the most recent SPARQL query received.
func (m *MockKnowledgeBase) GetLastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// encodeBindings renders records as a SPARQL JSON result document.
// Records without an amino acid sequence leave the variable unbound.
func encodeBindings(records []uniprot.Record) []byte {
	type cell struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}

	bindings := make([]map[string]cell, 0, len(records))
	for _, rec := range records {
		b := map[string]cell{
			"protein": {Type: "uri", Value: rec.Protein},
			"name":    {Type: "literal", Value: rec.Name},
			"link":    {Type: "uri", Value: rec.Link},
		}
		if rec.AASequence != "" {
			b["aa_sequence"] = cell{Type: "literal", Value: rec.AASequence}
		}
		bindings = append(bindings, b)
	}

	doc := map[string]any{
		"head":    map[string]any{"vars": []string{"protein", "name", "link", "aa_sequence"}},
		"results": map[string]any{"bindings": bindings},
	}

	data, _ := json.Marshal(doc)
	return data
}
