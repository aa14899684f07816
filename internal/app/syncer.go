package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samvad-hq/gds-client/internal/config"
	"github.com/samvad-hq/gds-client/internal/logger"
	"github.com/samvad-hq/gds-client/internal/reconciler"
	"github.com/samvad-hq/gds-client/internal/storage"
	"github.com/samvad-hq/gds-client/pkg/manifest"
	"github.com/samvad-hq/gds-client/pkg/publishers"
)

// Syncer keeps a graph converged on the manifest file. It re-reads the file
// on every pass so edits take effect without a restart.
type Syncer struct {
	cfg          *config.Config
	manifestFile string
	reconciler   *reconciler.Service
	fanout       *publishers.Fanout
	journal      storage.Journal
	interval     time.Duration
	log          logger.Logger
}

// NewSyncer builds the sync runtime from config.
func NewSyncer(ctx context.Context, cfg *config.Config, log logger.Logger, reg prometheus.Registerer) (*Syncer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := NewClient(cfg, log, reg)
	if err != nil {
		return nil, fmt.Errorf("build gds client: %w", err)
	}

	fanout, err := loadPublishers(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	journal, err := storage.NewJournal(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	deps := reconciler.ForClient(client)
	deps.Journal = journal
	deps.Events = fanout
	deps.Log = log

	return &Syncer{
		cfg:          cfg,
		manifestFile: cfg.ManifestFile,
		reconciler:   reconciler.NewService(deps, reconciler.Options{MaxAttempts: cfg.MaxAttempts}),
		fanout:       fanout,
		journal:      journal,
		interval:     cfg.SyncInterval,
		log:          log,
	}, nil
}

// loadPublishers builds the event fan-out. An empty or missing publishers
// file disables events.
func loadPublishers(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("publishers disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.WarnObj("publishers file not found; events disabled", "publishers_file", cfg.PublishersFile)
		return publishers.NewFanout(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run applies the manifest immediately and then on every tick until ctx ends.
func (s *Syncer) Run(ctx context.Context) error {
	if s == nil || s.reconciler == nil {
		return fmt.Errorf("syncer is not initialized")
	}
	defer s.close()

	s.log.InfoObj("sync loop starting", "sync_state", map[string]any{
		"manifest_file":    s.manifestFile,
		"publishers_count": s.fanout.Size(),
		"sync_interval":    s.interval.String(),
	})

	if err := s.RunOnce(ctx); err != nil {
		s.log.ErrorObj("initial sync failed", "error", err.Error())
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("sync loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.ErrorObj("scheduled sync failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single pass: apply, then prune.
func (s *Syncer) RunOnce(ctx context.Context) error {
	start := time.Now()
	m, err := manifest.Load(s.manifestFile)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	applied, applyErr := s.reconciler.Apply(ctx, m)
	var pruned reconciler.Report
	var pruneErr error
	if len(m.Prune) > 0 {
		pruned, pruneErr = s.reconciler.Prune(ctx, m.Prune)
	}

	s.log.InfoObj("sync pass completed", "sync_meta", map[string]any{
		"indexes":    len(m.Indexes),
		"changes":    len(applied.Changes) + len(pruned.Changes),
		"skipped":    applied.Skipped + pruned.Skipped,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return errors.Join(applyErr, pruneErr)
}

func (s *Syncer) close() {
	if err := s.fanout.Close(); err != nil {
		s.log.ErrorObj("publisher close failed", "error", err.Error())
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}
