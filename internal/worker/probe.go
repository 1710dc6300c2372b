package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mtlprog/folio/internal/domain"
)

// AccountLister is the upstream call used to check reachability.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// UpstreamGauge records probe results.
type UpstreamGauge interface {
	SetUpstreamUp(up bool)
}

const (
	stateUnknown int32 = iota
	stateUp
	stateDown
)

// ProbeWorker periodically checks that the upstream service answers.
// It keeps no upstream data.
type ProbeWorker struct {
	upstream AccountLister
	interval time.Duration
	timeout  time.Duration
	gauge    UpstreamGauge // optional
	state    atomic.Int32
}

// NewProbeWorker creates a new ProbeWorker. Each probe is bounded by timeout.
func NewProbeWorker(upstream AccountLister, interval, timeout time.Duration, gauge UpstreamGauge) *ProbeWorker {
	return &ProbeWorker{
		upstream: upstream,
		interval: interval,
		timeout:  timeout,
		gauge:    gauge,
	}
}

// Ready reports whether the last probe succeeded. It is true until the
// first probe completes.
func (w *ProbeWorker) Ready() bool {
	return w.state.Load() != stateDown
}

// Probe runs a single reachability check.
func (w *ProbeWorker) Probe(ctx context.Context) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	_, err := w.upstream.ListAccounts(ctx)
	up := err == nil
	if up {
		w.state.Store(stateUp)
	} else {
		w.state.Store(stateDown)
	}
	if w.gauge != nil {
		w.gauge.SetUpstreamUp(up)
	}
	return err
}

// Run starts the probe loop. It blocks until the context is cancelled.
func (w *ProbeWorker) Run(ctx context.Context) {
	slog.Info("ProbeWorker: starting", "interval", w.interval)

	// Probe immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ProbeWorker: shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ProbeWorker) runOnce(ctx context.Context) {
	if err := w.Probe(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("ProbeWorker: upstream unreachable", "error", err)
		return
	}
	slog.Debug("ProbeWorker: upstream reachable")
}
