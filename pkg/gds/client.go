// Package gds is a client for the index and schema REST endpoints of a
// graph data service.
package gds

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/gds-client/pkg/httpclient"
)

// Version is reported in the default User-Agent.
const Version = "0.3.0"

const defaultTimeout = 30 * time.Second

// Client issues authenticated requests under the configured API root.
// It is safe for concurrent use; calls share no mutable state.
type Client struct {
	base      *url.URL
	username  string
	password  string
	http      httpclient.Client
	log       Logger
	metrics   *Metrics
	timeout   time.Duration
	transport http.RoundTripper
	debug     DebugLogger
	userAgent string

	index  *IndexService
	schema *SchemaService
}

// New validates cfg and builds a Client. An invalid cfg yields a
// *ConfigurationError and no request is ever attempted.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      base,
		username:  cfg.Username,
		password:  cfg.Password,
		log:       noopLogger{},
		timeout:   defaultTimeout,
		userAgent: "gds-client/" + Version,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClientWithOptions(httpclient.Options{
			Timeout:   c.timeout,
			Debug:     c.debug != nil,
			Logger:    c.debug,
			Transport: c.transport,
		})
	}

	c.index = &IndexService{c: c}
	c.schema = &SchemaService{c: c}
	return c, nil
}

// Index returns the index resource.
func (c *Client) Index() *IndexService { return c.index }

// Schema returns the schema resource.
func (c *Client) Schema() *SchemaService { return c.schema }

// BaseURL returns the API root requests are scoped under.
func (c *Client) BaseURL() string { return c.base.String() }

// do sends one request and returns the body when the status is in expect.
func (c *Client) do(ctx context.Context, op, method, path string, body any, expect ...int) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	reqID := uuid.NewString()
	target := c.base.String() + path
	req := httpclient.Request{
		Method: method,
		URL:    target,
		Headers: map[string]string{
			"Accept":       "application/json",
			"User-Agent":   c.userAgent,
			"X-Request-Id": reqID,
		},
		Username: c.username,
		Password: c.password,
		Body:     body,
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(op, "error", elapsed)
		c.log.WarnObj("gds request failed", "gds_request", map[string]any{
			"op":         op,
			"method":     method,
			"url":        target,
			"request_id": reqID,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		})
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	code := resp.StatusCode()
	c.metrics.observe(op, strconv.Itoa(code), elapsed)
	c.log.DebugObj("gds request completed", "gds_request", map[string]any{
		"op":         op,
		"method":     method,
		"url":        target,
		"request_id": reqID,
		"status":     code,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	if !slices.Contains(expect, code) {
		return code, nil, &HTTPStatusError{Op: op, StatusCode: code, Body: snippet(resp.Body())}
	}
	return code, bytes.TrimSpace(resp.Body()), nil
}
