// Package reconciler converges a graph's schema and indexes on a manifest.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/gds-client/internal/domain"
	"github.com/samvad-hq/gds-client/internal/logger"
	"github.com/samvad-hq/gds-client/internal/storage"
	"github.com/samvad-hq/gds-client/pkg/gds"
	"github.com/samvad-hq/gds-client/pkg/manifest"
	"github.com/samvad-hq/gds-client/pkg/publishers"
)

// schemaKey is the journal key of the single schema a graph holds.
var schemaKey = storage.Key(domain.ResourceSchema, "default")

// Deps are the collaborators of a Service. Journal, Events and Log are optional.
type Deps struct {
	Index   IndexAPI
	Schema  SchemaAPI
	Journal storage.Journal
	Events  EventPublisher
	// Target names the service instance in published events.
	Target string
	Log    logger.Logger
}

// Options tune retries and parallelism. Zero values take defaults.
type Options struct {
	MaxAttempts    int
	Parallelism    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

const (
	defaultMaxAttempts    = 5
	defaultParallelism    = 4
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// Report summarises one Apply or Prune call.
type Report struct {
	Changes []domain.Change `json:"changes"`
	Skipped int             `json:"skipped"`
}

// Service applies manifests through the gds client.
type Service struct {
	index   IndexAPI
	schema  SchemaAPI
	journal storage.Journal
	events  EventPublisher
	target  string
	log     logger.Logger
	opts    Options
	now     func() time.Time
}

// NewService wires a reconciler.
func NewService(d Deps, opts Options) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	s := &Service{
		index:   d.Index,
		schema:  d.Schema,
		journal: d.Journal,
		events:  d.Events,
		target:  d.Target,
		log:     d.Log,
		opts:    opts,
		now:     time.Now,
	}
	if s.journal == nil {
		s.journal, _ = storage.NewJournal("none", "", storage.Options{})
	}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}
	return s
}

// ForClient builds Deps for c.
func ForClient(c *gds.Client) Deps {
	return Deps{Index: c.Index(), Schema: c.Schema(), Target: c.BaseURL()}
}

// Apply converges the schema first, then every index. Index failures do not
// stop the other indexes; all failures are joined in the returned error.
func (s *Service) Apply(ctx context.Context, m *manifest.Manifest) (Report, error) {
	if s == nil || s.index == nil || s.schema == nil {
		return Report{}, fmt.Errorf("reconciler is not initialized")
	}
	if m == nil {
		return Report{}, fmt.Errorf("manifest must not be nil")
	}

	var rep Report
	if m.Schema != nil {
		change, skipped, err := s.applySchema(ctx, *m.Schema)
		if err != nil {
			return rep, fmt.Errorf("apply schema: %w", err)
		}
		if skipped {
			rep.Skipped++
		} else {
			rep.Changes = append(rep.Changes, change)
		}
	}

	changes, skipped, err := s.applyIndexes(ctx, m.Indexes)
	rep.Changes = append(rep.Changes, changes...)
	rep.Skipped += skipped
	return rep, err
}

func (s *Service) applySchema(ctx context.Context, def gds.SchemaDefinition) (domain.Change, bool, error) {
	digest, err := manifest.Digest(def)
	if err != nil {
		return domain.Change{}, false, err
	}
	done, err := s.journal.Applied(schemaKey, digest)
	if err != nil {
		return domain.Change{}, false, fmt.Errorf("read journal: %w", err)
	}
	if done {
		s.log.DebugObj("schema unchanged; skipping", "reconcile_skip", map[string]any{"digest": digest})
		return domain.Change{}, true, nil
	}

	if _, err := retry(ctx, s, gds.OpSchemaSet, func(ctx context.Context) (*gds.SchemaEnvelope, error) {
		return s.schema.Set(ctx, def)
	}); err != nil {
		return domain.Change{}, false, err
	}

	env, err := retry(ctx, s, gds.OpSchemaGet, s.schema.Get)
	if err != nil {
		return domain.Change{}, false, err
	}
	current, ok := env.Applied()
	// The graph may already hold elements the manifest does not declare.
	if !ok || !current.Contains(def) {
		return domain.Change{}, false, errors.New("schema read back from the service is missing elements that were sent")
	}

	change := s.record(ctx, domain.ChangeSchemaApplied, domain.ResourceSchema, "default", digest)
	if err := s.journal.MarkApplied(schemaKey, digest); err != nil {
		return change, false, fmt.Errorf("write journal: %w", err)
	}
	return change, false, nil
}

func (s *Service) applyIndexes(ctx context.Context, defs []gds.IndexDefinition) ([]domain.Change, int, error) {
	if len(defs) == 0 {
		return nil, 0, nil
	}

	type result struct {
		change  domain.Change
		skipped bool
		err     error
	}
	results := make([]result, len(defs))

	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)
	for i, def := range defs {
		g.Go(func() error {
			change, skipped, err := s.applyIndex(ctx, def)
			if err != nil {
				err = fmt.Errorf("index %q: %w", def.Name, err)
			}
			results[i] = result{change: change, skipped: skipped, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		changes []domain.Change
		skipped int
		errs    []error
	)
	for _, r := range results {
		switch {
		case r.err != nil:
			errs = append(errs, r.err)
		case r.skipped:
			skipped++
		default:
			changes = append(changes, r.change)
		}
	}
	return changes, skipped, errors.Join(errs...)
}

func (s *Service) applyIndex(ctx context.Context, def gds.IndexDefinition) (domain.Change, bool, error) {
	key := storage.Key(domain.ResourceIndex, def.Name)
	digest, err := manifest.Digest(def)
	if err != nil {
		return domain.Change{}, false, err
	}
	done, err := s.journal.Applied(key, digest)
	if err != nil {
		return domain.Change{}, false, fmt.Errorf("read journal: %w", err)
	}
	if done {
		return domain.Change{}, true, nil
	}

	kind := domain.ChangeIndexPresent
	_, err = retry(ctx, s, gds.OpIndexStatus, func(ctx context.Context) (gds.Object, error) {
		return s.index.Status(ctx, def.Name)
	})
	switch {
	case gds.IsNotFound(err):
		if _, err := retry(ctx, s, gds.OpIndexCreate, func(ctx context.Context) (gds.Object, error) {
			return s.index.Create(ctx, def)
		}); err != nil {
			return domain.Change{}, false, err
		}
		kind = domain.ChangeIndexCreated
	case err != nil:
		return domain.Change{}, false, err
	}

	change := s.record(ctx, kind, domain.ResourceIndex, def.Name, digest)
	if err := s.journal.MarkApplied(key, digest); err != nil {
		return change, false, fmt.Errorf("write journal: %w", err)
	}
	return change, false, nil
}

// Prune deletes the named indexes. Indexes that are already gone are skipped.
func (s *Service) Prune(ctx context.Context, names []string) (Report, error) {
	if s == nil || s.index == nil {
		return Report{}, fmt.Errorf("reconciler is not initialized")
	}

	var (
		rep  Report
		errs []error
	)
	for _, name := range names {
		_, err := retry(ctx, s, gds.OpIndexDelete, func(ctx context.Context) (gds.Object, error) {
			return s.index.Delete(ctx, name)
		})
		switch {
		case gds.IsNotFound(err):
			rep.Skipped++
		case err != nil:
			errs = append(errs, fmt.Errorf("prune index %q: %w", name, err))
			continue
		default:
			rep.Changes = append(rep.Changes, s.record(ctx, domain.ChangeIndexDeleted, domain.ResourceIndex, name, ""))
		}
		if err := s.journal.Forget(storage.Key(domain.ResourceIndex, name)); err != nil {
			errs = append(errs, fmt.Errorf("forget index %q: %w", name, err))
		}
	}
	return rep, errors.Join(errs...)
}

// record logs the change and publishes it. Publishing is best effort.
func (s *Service) record(ctx context.Context, kind domain.ChangeKind, resource, name, digest string) domain.Change {
	change := domain.Change{Kind: kind, Resource: resource, Name: name, Digest: digest, At: s.now()}
	s.log.InfoObj("reconcile change", "change", map[string]any{
		"kind":     string(kind),
		"resource": resource,
		"name":     name,
		"digest":   digest,
	})

	if s.events == nil {
		return change
	}
	evt := publishers.NewEvent(s.target, change)
	if _, err := s.events.Publish(ctx, evt); err != nil {
		s.log.WarnObj("change event not fully delivered", "publish_error", map[string]any{
			"event_id": evt.ID,
			"kind":     evt.Kind,
			"error":    err.Error(),
		})
	}
	return change
}
