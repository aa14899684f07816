package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRestyClientDoSendsHeadersAndJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
		if body["name"] != "x" {
			t.Fatalf("unexpected body %#v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewRestyClientWithOptions(Options{Timeout: 2 * time.Second})
	resp, err := client.Do(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     srv.URL + "/index",
		Headers: map[string]string{"X-Test": "1"},
		Body:    map[string]string{"name": "x"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if string(resp.Body()) != "{}" {
		t.Fatalf("body = %q", resp.Body())
	}
}

func TestRestyClientNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestRestyClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(time.Second).Do(context.Background(), Request{Method: http.MethodGet, URL: url}); err == nil {
		t.Fatalf("expected error for closed server")
	}
}

func TestRestyClientRejectsEmptyMethod(t *testing.T) {
	if _, err := NewRestyClient(time.Second).Do(context.Background(), Request{URL: "http://127.0.0.1"}); err == nil {
		t.Fatalf("expected error for empty method")
	}
}

func TestRestyClientSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "s3cret" {
			t.Errorf("basic auth = %q/%q (present %v)", user, pass, ok)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewRestyClient(time.Second).Do(context.Background(), Request{
		Method:   http.MethodGet,
		URL:      srv.URL,
		Username: "admin",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestRestyClientOmitsAuthWithoutCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := NewRestyClient(time.Second).Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestRestyClientUsesConfiguredTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rt := &countingTransport{}
	client := NewRestyClientWithOptions(Options{Timeout: time.Second, Transport: rt})
	if _, err := client.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if rt.calls.Load() != 1 {
		t.Fatalf("transport calls = %d, want 1", rt.calls.Load())
	}
}
