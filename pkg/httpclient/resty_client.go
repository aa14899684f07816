package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the resty-backed client.
type Options struct {
	Timeout time.Duration
	// Debug makes resty log every request and response through Logger.
	Debug  bool
	Logger resty.Logger
	// Transport replaces the default round tripper.
	Transport http.RoundTripper
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(Options{Timeout: timeout})}
}

// NewRestyClientWithOptions creates a RestyClient from opts.
func NewRestyClientWithOptions(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// newRestyBaseClient creates a new resty.Client from opts.
func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	c.SetDebug(opts.Debug)
	return c
}

// Do executes req. Non-2xx statuses are returned as responses, not errors;
// only transport failures produce an error.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return nil, fmt.Errorf("http method is empty")
	}

	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if req.Username != "" || req.Password != "" {
		rr.SetBasicAuth(req.Username, req.Password)
	}
	if req.Body != nil {
		rr.SetHeader("Content-Type", "application/json")
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
