package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/samvad-hq/gds-client/internal/config"
	"github.com/samvad-hq/gds-client/internal/logger"
	"github.com/samvad-hq/gds-client/pkg/gds"
)

// NewClient builds a gds client from cfg. reg may be nil to skip metrics.
func NewClient(cfg *config.Config, log logger.Logger, reg prometheus.Registerer, extra ...gds.Option) (*gds.Client, error) {
	opts := []gds.Option{
		gds.WithTimeout(cfg.RequestTimeout),
		gds.WithUserAgent(cfg.AppName + "/" + gds.Version),
	}
	if log != nil {
		opts = append(opts, gds.WithLogger(log))
	}
	if reg != nil {
		opts = append(opts, gds.WithMetrics(reg))
	}
	if cfg.HTTPDebug && logger.S != nil {
		opts = append(opts, gds.WithHTTPDebug(logger.S))
	}
	opts = append(opts, extra...)
	return gds.New(cfg.ClientConfig(), opts...)
}
