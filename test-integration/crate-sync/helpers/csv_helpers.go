package helpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// GitHubRow is one row of the curated GitHub repositories list
type GitHubRow struct {
	Name         string
	HasCargoToml bool
	HasCargoLock bool
}

// CSVServer serves the curated GitHub list over HTTP
type CSVServer struct {
	server *httptest.Server

	mu       sync.Mutex
	body     string
	status   int
	requests int
}

// NewCSVServer starts a server serving rows
func NewCSVServer(rows []GitHubRow) *CSVServer {
	s := &CSVServer{status: http.StatusOK}
	s.SetRows(rows)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.requests++
		if s.status != http.StatusOK {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(s.body))
	}))
	s.server.Config.SetKeepAlivesEnabled(false)

	return s
}

// URL returns the address of the list
func (s *CSVServer) URL() string {
	return s.server.URL + "/github.csv"
}

// SetRows replaces the served rows
func (s *CSVServer) SetRows(rows []GitHubRow) {
	var b strings.Builder
	b.WriteString("name,has_cargo_toml,has_cargo_lock\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s,%t,%t\n", row.Name, row.HasCargoToml, row.HasCargoLock)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = b.String()
}

// FailWith makes every request answer with status
func (s *CSVServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Requests returns how many requests were served
func (s *CSVServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Close shuts the server down
func (s *CSVServer) Close() {
	s.server.Close()
}
