package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prn-tf/helix/internal/metricsx"
	"github.com/prn-tf/helix/internal/observer"
)

// terminalEncryptionFactory renders one line per file as it is encrypted,
// writing to out (the command's standard output, as wired by the encrypt
// and decrypt commands), and records per-file byte counts, outcomes, and durations
// against metrics. metrics may be nil, in which case recording is
// skipped. Safe for the sequential, single-goroutine use the driver
// already guarantees.
type terminalEncryptionFactory struct {
	out     io.Writer
	metrics *metricsx.Metrics
	mu      *sync.Mutex
	seen    int
}

func newTerminalEncryptionFactory(out io.Writer, metrics *metricsx.Metrics) *terminalEncryptionFactory {
	return &terminalEncryptionFactory{out: out, metrics: metrics, mu: &sync.Mutex{}}
}

func (f *terminalEncryptionFactory) NewObserver(relativePath string, size int64) observer.EncryptionObserver {
	f.mu.Lock()
	f.seen++
	f.mu.Unlock()
	return &terminalEncryptionObserver{out: f.out, metrics: f.metrics, mu: f.mu, path: relativePath, size: size, started: time.Now()}
}

type terminalEncryptionObserver struct {
	out       io.Writer
	metrics   *metricsx.Metrics
	mu        *sync.Mutex
	path      string
	size      int64
	processed int64
	started   time.Time
}

func (o *terminalEncryptionObserver) UpdateState(state observer.EncryptionState) {}

func (o *terminalEncryptionObserver) BytesProcessed(n int) {
	o.processed += int64(n)
	if o.metrics != nil {
		o.metrics.BytesProcessedTotal.WithLabelValues("encrypt").Add(float64(n))
	}
}

func (o *terminalEncryptionObserver) Failed(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "FAIL  %s: %v\n", o.path, err)
	if o.metrics != nil {
		o.metrics.FilesTotal.WithLabelValues("encrypt", "failed").Inc()
	}
}

func (o *terminalEncryptionObserver) End(end observer.EncryptionEnd) {
	o.mu.Lock()
	defer o.mu.Unlock()

	outcome := "done"
	switch end {
	case observer.Unchanged:
		outcome = "unchanged"
		fmt.Fprintf(o.out, "skip  %s\n", o.path)
	default:
		fmt.Fprintf(o.out, "ok    %s (%d bytes)\n", o.path, o.processed)
	}

	if o.metrics != nil {
		o.metrics.FilesTotal.WithLabelValues("encrypt", outcome).Inc()
		o.metrics.FileDuration.WithLabelValues("encrypt").Observe(time.Since(o.started).Seconds())
	}
}

// terminalDecryptionFactory is the decrypt-side counterpart of
// terminalEncryptionFactory.
type terminalDecryptionFactory struct {
	out     io.Writer
	metrics *metricsx.Metrics
	mu      *sync.Mutex
}

func newTerminalDecryptionFactory(out io.Writer, metrics *metricsx.Metrics) *terminalDecryptionFactory {
	return &terminalDecryptionFactory{out: out, metrics: metrics, mu: &sync.Mutex{}}
}

func (f *terminalDecryptionFactory) NewObserver(relativePath string) observer.DecryptionObserver {
	return &terminalDecryptionObserver{out: f.out, metrics: f.metrics, mu: f.mu, path: relativePath, started: time.Now()}
}

type terminalDecryptionObserver struct {
	out       io.Writer
	metrics   *metricsx.Metrics
	mu        *sync.Mutex
	path      string
	size      int64
	processed int64
	started   time.Time
}

func (o *terminalDecryptionObserver) InitSize(n int64) { o.size = n }

func (o *terminalDecryptionObserver) UpdateState(state observer.DecryptionState) {}

func (o *terminalDecryptionObserver) BytesProcessed(n int) {
	o.processed += int64(n)
	if o.metrics != nil {
		o.metrics.BytesProcessedTotal.WithLabelValues("decrypt").Add(float64(n))
	}
}

func (o *terminalDecryptionObserver) Failed(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, "FAIL  %s: %v\n", o.path, err)
}

func (o *terminalDecryptionObserver) End(end observer.DecryptionEnd) {
	o.mu.Lock()
	defer o.mu.Unlock()

	outcome := "done"
	switch end {
	case observer.DecryptDone:
		fmt.Fprintf(o.out, "ok    %s (%d bytes)\n", o.path, o.processed)
	case observer.BlockNotFound:
		outcome = "block_not_found"
		fmt.Fprintf(o.out, "MISS  %s: block not found\n", o.path)
	default:
		outcome = "malformed_block"
		fmt.Fprintf(o.out, "BAD   %s: malformed block\n", o.path)
	}

	if o.metrics != nil {
		o.metrics.FilesTotal.WithLabelValues("decrypt", outcome).Inc()
		o.metrics.FileDuration.WithLabelValues("decrypt").Observe(time.Since(o.started).Seconds())
		if outcome == "block_not_found" || outcome == "malformed_block" {
			o.metrics.IntegrityFailures.WithLabelValues(outcome).Inc()
		}
	}
}
