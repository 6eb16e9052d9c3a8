// Package metrics counts what a batch run did and optionally pushes the
// counts to a Prometheus Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "cnftdrop"

// ResultOK labels entries that minted.
const ResultOK = "ok"

// Batch holds the counters of a single run on its own registry.
type Batch struct {
	registry *prometheus.Registry

	entries  *prometheus.CounterVec
	lamports prometheus.Counter
	duration prometheus.Histogram
	lastRun  prometheus.Gauge

	started time.Time
}

// NewBatch creates the run counters.
func NewBatch() *Batch {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Batch{
		registry: registry,
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Catalog entries processed, by result",
		}, []string{"result"}),
		lamports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claim_funding_lamports_total",
			Help:      "Lamports transferred to claim wallets",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "entry_duration_seconds",
			Help:      "Time to fund and mint one catalog entry",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		started: time.Now(),
	}
}

// Funded records a confirmed funding transfer.
func (b *Batch) Funded(lamports uint64) {
	b.lamports.Add(float64(lamports))
}

// EntryDone records a finished entry. An empty errorKind means success.
func (b *Batch) EntryDone(errorKind string, elapsed time.Duration) {
	if errorKind == "" {
		errorKind = ResultOK
	}
	b.entries.WithLabelValues(errorKind).Inc()
	b.duration.Observe(elapsed.Seconds())
}

// Registry exposes the run's registry.
func (b *Batch) Registry() *prometheus.Registry {
	return b.registry
}

// Push marks the run finished and sends every metric to the Pushgateway at
// url under job, replacing the previous push of that job.
func (b *Batch) Push(ctx context.Context, url, job string) error {
	b.lastRun.SetToCurrentTime()

	if err := push.New(url, job).Gatherer(b.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}

// Elapsed returns the time since the batch was created.
func (b *Batch) Elapsed() time.Duration {
	return time.Since(b.started)
}
