package gds_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

const (
	testBasePath = "/b4a2c1/g"
	testUser     = "admin"
	testPassword = "s3cret"
)

// sampleEnvelope mirrors the service's response wrapper.
func sampleEnvelope(data any) map[string]any {
	return map[string]any{
		"requestId": "71e9b56e-bded-402e-8fac-cfc83aec9c31",
		"status": map[string]any{
			"message":    "",
			"code":       200,
			"attributes": map[string]any{},
		},
		"result": map[string]any{
			"data": data,
			"meta": map[string]any{},
		},
	}
}

// replyFunc computes a reply from the request body.
type replyFunc func(body []byte) (int, any)

type expectation struct {
	method string
	path   string
	reply  replyFunc
	hit    bool
}

type recordedRequest struct {
	Method      string
	EscapedPath string
	Header      http.Header
	Body        []byte
}

// mockService is an httptest server answering scripted expectations in
// order of registration. Each expectation is consumed once.
type mockService struct {
	ts *httptest.Server

	mu        sync.Mutex
	exps      []*expectation
	requests  []recordedRequest
	unmatched []string
}

func newMockService() *mockService {
	m := &mockService{}
	m.ts = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL is the API root clients should be configured with.
func (m *mockService) URL() string { return m.ts.URL + testBasePath }

func (m *mockService) Close() { m.ts.Close() }

// reply registers a fixed answer for method and path (relative to the API root).
func (m *mockService) reply(method, path string, status int, body any) *mockService {
	return m.replyWith(method, path, func([]byte) (int, any) { return status, body })
}

func (m *mockService) replyWith(method, path string, fn replyFunc) *mockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exps = append(m.exps, &expectation{method: method, path: testBasePath + path, reply: fn})
	return m
}

// pending lists expectations that were never hit.
func (m *mockService) pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.exps {
		if !e.hit {
			out = append(out, e.method+" "+e.path)
		}
	}
	return append(out, m.unmatched...)
}

func (m *mockService) recorded() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *mockService) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{
		Method:      r.Method,
		EscapedPath: r.URL.EscapedPath(),
		Header:      r.Header.Clone(),
		Body:        body,
	})
	var match *expectation
	for _, e := range m.exps {
		if !e.hit && e.method == r.Method && e.path == r.URL.EscapedPath() {
			match = e
			e.hit = true
			break
		}
	}
	if match == nil {
		m.unmatched = append(m.unmatched, fmt.Sprintf("unexpected %s %s", r.Method, r.URL.EscapedPath()))
	}
	m.mu.Unlock()

	if match == nil {
		http.Error(w, "no expectation", http.StatusNotImplemented)
		return
	}
	if user, pass, ok := r.BasicAuth(); !ok || user != testUser || pass != testPassword {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	status, payload := match.reply(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch p := payload.(type) {
	case nil:
	case string:
		_, _ = io.WriteString(w, p)
	default:
		_ = json.NewEncoder(w).Encode(p)
	}
}
