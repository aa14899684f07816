package gds

import (
	"net/url"
	"strings"
)

// Config identifies the service instance and the credentials used for
// HTTP basic authentication. A Client never mutates it.
type Config struct {
	// URL is the API root, e.g. https://host/service-id/g. Its path becomes
	// the prefix of every endpoint.
	URL      string
	Username string
	Password string
}

// validate parses and checks the configuration.
func (c Config) validate() (*url.URL, error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return nil, &ConfigurationError{Field: "url", Reason: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigurationError{Field: "url", Reason: "is not a valid URL: " + err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ConfigurationError{Field: "url", Reason: "must use http or https"}
	}
	if u.Host == "" {
		return nil, &ConfigurationError{Field: "url", Reason: "must include a host"}
	}
	if c.Username == "" {
		return nil, &ConfigurationError{Field: "username", Reason: "is required"}
	}
	if c.Password == "" {
		return nil, &ConfigurationError{Field: "password", Reason: "is required"}
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, nil
}
