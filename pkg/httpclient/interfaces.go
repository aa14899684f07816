package httpclient

import "context"

// Request describes a single outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Username and Password, when either is set, are sent as basic auth.
	Username string
	Password string
	// Body is marshalled as JSON when non-nil.
	Body any
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
