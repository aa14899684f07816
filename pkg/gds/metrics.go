package gds

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics on reg. A nil registerer yields a
// Metrics that records nothing. Registering twice on the same registerer
// reuses the collectors already there; any other registration failure is
// returned.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return &Metrics{}, nil
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gds_client",
		Name:      "requests_total",
		Help:      "Requests issued to the graph data service by operation and status code.",
	}, []string{"op", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gds_client",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests to the graph data service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	var err error
	m := &Metrics{}
	if m.requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register gds metrics: %w", err)
	}
	return c, nil
}

// observe records one finished request. code is the HTTP status or "error".
func (m *Metrics) observe(op, code string, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
