// Package metricsx provides Prometheus metrics for a capsule run and an
// optional debug HTTP exporter. This is local observability for the CLI
// process — it never touches capsule contents over the network.
package metricsx

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace for every capsule metric.
const namespace = "helix"

// Metrics holds the counters and histograms emitted during an
// encrypt/decrypt run.
type Metrics struct {
	BytesProcessedTotal *prometheus.CounterVec
	FilesTotal          *prometheus.CounterVec
	IntegrityFailures   *prometheus.CounterVec
	FileDuration        *prometheus.HistogramVec
}

// New creates and registers the capsule run metrics against the default
// Prometheus registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers the capsule run metrics
// against reg, letting callers (notably tests) use an isolated registry
// instead of the global default.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BytesProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "bytes_processed_total",
				Help:      "Total plaintext bytes processed, by operation.",
			},
			[]string{"operation"},
		),
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "files_total",
				Help:      "Total files processed, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		IntegrityFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "integrity_failures_total",
				Help:      "Per-file integrity failures, by kind.",
			},
			[]string{"kind"},
		),
		FileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "file_duration_seconds",
				Help:      "Time spent processing one file, by operation.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ServeDebug starts a minimal HTTP server exposing Handler at /metrics
// on addr, stopping when ctx is cancelled. Intended for the CLI's
// optional --metrics-addr flag; not started unless the operator asks
// for it.
func ServeDebug(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
