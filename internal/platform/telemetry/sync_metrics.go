package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

const metricsNamespace = "quotesync"

// SyncMetrics exports sync pass outcomes to Prometheus. It satisfies
// ports.SyncObserver.
type SyncMetrics struct {
	passes         *prometheus.CounterVec
	passDuration   prometheus.Histogram
	conflicts      prometheus.Counter
	added          prometheus.Counter
	pushes         *prometheus.CounterVec
	localOnly      prometheus.Gauge
	lastSuccessful prometheus.Gauge
}

// NewSyncMetrics creates the collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Completed sync passes by trigger and whether the remote fetch failed.",
		}, []string{"trigger", "degraded"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of sync passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Conflicts detected and resolved remote-wins.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "remote_added_total",
			Help:      "Remote-only records appended to the local collection.",
		}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "pushes_total",
			Help:      "Local-only records pushed to the remote by outcome.",
		}, []string{"outcome"}),
		localOnly: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "local_only_records",
			Help:      "Local-only records seen by the last pass.",
		}),
		lastSuccessful: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time the last pass finished.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.passes, m.passDuration, m.conflicts, m.added, m.pushes, m.localOnly, m.lastSuccessful,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ConflictsDetected counts auto-resolved conflicts.
func (m *SyncMetrics) ConflictsDetected(_ context.Context, conflicts []domain.Conflict) {
	m.conflicts.Add(float64(len(conflicts)))
}

// SyncCompleted records the pass summary.
func (m *SyncMetrics) SyncCompleted(_ context.Context, report *domain.SyncReport) {
	degraded := "false"
	if report.FetchError != "" {
		degraded = "true"
	}

	m.passes.WithLabelValues(report.Trigger, degraded).Inc()
	m.passDuration.Observe(report.Duration.Seconds())
	m.added.Add(float64(len(report.Added)))
	m.localOnly.Set(float64(report.LocalOnly))
	m.lastSuccessful.Set(float64(report.StartedAt.Add(report.Duration).Unix()))

	succeeded, failed := report.PushCounts()
	m.pushes.WithLabelValues("success").Add(float64(succeeded))
	m.pushes.WithLabelValues("failure").Add(float64(failed))
}
