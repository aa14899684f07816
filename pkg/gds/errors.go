package gds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// ConfigurationError reports an unusable Config. It is returned by New
// before any request is attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gds: invalid configuration: %s %s", e.Field, e.Reason)
}

// ValidationError reports a request payload or argument rejected before dispatch.
type ValidationError struct {
	Op      string
	Details map[string]string
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("gds: %s: %v", e.Op, e.Err)
	}
	parts := make([]string, 0, len(e.Details))
	for field, msg := range e.Details {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("gds: %s: validation failed: %s", e.Op, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError wraps a failure to obtain any HTTP response: DNS,
// connection refused, timeout or a cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gds: %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the service answers with a status outside
// the set expected for the operation.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gds: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("gds: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// ParseError is returned when a response body is not the JSON the operation expects.
type ParseError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gds: %s: decode response (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when no response was received.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// IsNotFound reports whether the service answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRecoverable reports whether retrying the same call may succeed:
// transport failures, 408, 429 and 5xx. The client itself never retries.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		// Cancelled calls are final.
		return !errors.Is(err, context.Canceled)
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusRequestTimeout, se.StatusCode == http.StatusTooManyRequests:
			return true
		case se.StatusCode >= 500 && se.StatusCode < 600:
			return true
		}
	}
	return false
}

const maxSnippet = 512

// snippet trims a response body for inclusion in errors.
func snippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippet {
		cut := maxSnippet
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return strings.TrimSpace(string(body))
}
