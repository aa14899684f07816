package gds

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samvad-hq/gds-client/pkg/httpclient"
)

// Option configures a Client during construction in New. Options are
// applied in order, before the default transport is built.
type Option func(*Client) error

// WithHTTPClient replaces the resty transport. Every Request sent through hc
// still carries the configured Username and Password.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithTransport sets the round tripper under the default resty transport,
// e.g. for proxies, custom TLS or instrumentation. It has no effect
// together with WithHTTPClient.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.transport = rt
		return nil
	}
}

// WithTimeout bounds each request, including connection setup and reading
// the body. It has no effect together with WithHTTPClient. The value must
// be greater than zero.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithLogger routes request logs to log.
func WithLogger(log Logger) Option {
	return func(c *Client) error {
		c.log = ensureLogger(log)
		return nil
	}
}

// WithHTTPDebug makes the default transport dump every request and response
// to l. Dumps include the Authorization header; do not enable in production.
func WithHTTPDebug(l DebugLogger) Option {
	return func(c *Client) error {
		c.debug = l
		return nil
	}
}

// WithMetrics registers request metrics on reg. Collectors already on reg
// under the same names are reused; conflicting ones fail New.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) error {
		m, err := NewMetrics(reg)
		if err != nil {
			return err
		}
		c.metrics = m
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua == "" {
			return errors.New("user agent must not be empty")
		}
		c.userAgent = ua
		return nil
	}
}
