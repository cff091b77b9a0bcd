// Package metrics exposes the engine's Prometheus counters and
// gauges: claims, completions, failures, retries, watchdog
// recoveries, and the number of items currently running.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder wraps the engine's Prometheus collectors. It is injected
// into the Worker and Watchdog as plain function hooks
// (WorkerDeps.OnOutcome, WatchdogDeps.OnRecovery) so the application
// layer never imports prometheus directly.
type Recorder struct {
	claims      prometheus.Counter
	completions prometheus.Counter
	failures    prometheus.Counter
	retries     prometheus.Counter
	recoveries  prometheus.Counter
	running     prometheus.Gauge
}

// NewRecorder constructs and registers the engine's collectors
// against reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumebatch_items_claimed_total",
			Help: "Total number of items claimed by a worker.",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumebatch_items_completed_total",
			Help: "Total number of items that completed successfully.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumebatch_items_failed_total",
			Help: "Total number of items that reached a terminal failed state.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumebatch_items_retried_total",
			Help: "Total number of transient-failure retries scheduled.",
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resumebatch_watchdog_recoveries_total",
			Help: "Total number of items reclaimed by the watchdog after a lease expiry.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resumebatch_items_running",
			Help: "Number of items currently claimed and running.",
		}),
	}
	reg.MustRegister(r.claims, r.completions, r.failures, r.retries, r.recoveries, r.running)
	return r
}

// OnWorkerOutcome is a WorkerDeps.OnOutcome-shaped hook.
func (r *Recorder) OnWorkerOutcome(outcome string) {
	switch outcome {
	case "claimed":
		r.claims.Inc()
		r.running.Inc()
	case "completed":
		r.completions.Inc()
		r.running.Dec()
	case "retried":
		r.retries.Inc()
		r.running.Dec()
	case "failed":
		r.failures.Inc()
		r.running.Dec()
	}
}

// OnWatchdogRecovery is a WatchdogDeps.OnRecovery-shaped hook.
func (r *Recorder) OnWatchdogRecovery(promotedToFailed bool) {
	r.recoveries.Inc()
	r.running.Dec()
	if promotedToFailed {
		r.failures.Inc()
	}
}
