// Package storage keeps a local journal of definitions already applied to
// the service, so unchanged definitions are not re-sent on every pass.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Journal records which definition digest was last applied under a key.
type Journal interface {
	Close() error
	// Applied reports whether key was applied with exactly this digest and
	// has not expired.
	Applied(key, digest string) (bool, error)
	MarkApplied(key, digest string) error
	Forget(key string) error
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewJournal creates the configured storage backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		j, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// Key builds the journal key for a resource, e.g. Key("index", "people").
func Key(resource, name string) string {
	return resource + "/" + name
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                         { return nil }
func (noopJournal) Applied(string, string) (bool, error) { return false, nil }
func (noopJournal) MarkApplied(string, string) error     { return nil }
func (noopJournal) Forget(string) error                  { return nil }
