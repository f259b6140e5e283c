// Package promhooks exports preloadcache hook events as Prometheus metrics.
package promhooks

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/preloadcache"
)

type Hooks struct {
	loadDuration prometheus.Histogram
	completed    prometheus.Counter
	failed       *prometheus.CounterVec
	duplicates   prometheus.Counter
	truncated    prometheus.Counter
	dropped      prometheus.Counter
	evicted      prometheus.Counter
	stale        prometheus.Counter
}

var _ preloadcache.Hooks = (*Hooks)(nil)

// New registers the metric set on reg. subsystem distinguishes multiple
// caches in one process (e.g. "task_detail").
func New(reg prometheus.Registerer, subsystem string) *Hooks {
	f := promauto.With(reg)
	ns := "preloadcache"
	return &Hooks{
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "load_duration_seconds",
			Help:      "Time from load start to a committed value.",
			Buckets:   prometheus.DefBuckets,
		}),
		completed: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "loads_completed_total",
			Help:      "Loads that settled successfully.",
		}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "loads_failed_total",
			Help:      "Loads that settled with an error, by reason.",
		}, []string{"reason"}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "duplicates_suppressed_total",
			Help:      "Preload calls suppressed because the key was already loading.",
		}),
		truncated: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "batches_truncated_total",
			Help:      "PreloadBatch calls with more eligible keys than the width.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "batch_keys_dropped_total",
			Help:      "Eligible keys a truncated batch did not schedule.",
		}),
		evicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "entries_evicted_total",
			Help:      "Completed entries removed by the capacity check.",
		}),
		stale: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: subsystem,
			Name:      "stale_loads_discarded_total",
			Help:      "Load results discarded because the key was invalidated mid-flight.",
		}),
	}
}

func (h *Hooks) LoadCompleted(_ string, elapsed time.Duration) {
	h.completed.Inc()
	h.loadDuration.Observe(elapsed.Seconds())
}

func (h *Hooks) LoadFailed(_ string, reason error) {
	h.failed.WithLabelValues(reasonLabel(reason)).Inc()
}

func (h *Hooks) DuplicateSuppressed(string) { h.duplicates.Inc() }

func (h *Hooks) BatchTruncated(requested, scheduled int) {
	h.truncated.Inc()
	h.dropped.Add(float64(requested - scheduled))
}

func (h *Hooks) Evicted(string)            { h.evicted.Inc() }
func (h *Hooks) StaleLoadDiscarded(string) { h.stale.Inc() }

func reasonLabel(err error) string {
	var ae *preloadcache.AssemblyError
	switch {
	case errors.Is(err, preloadcache.ErrTimeout):
		return "timeout"
	case errors.Is(err, preloadcache.ErrCancelled):
		return "cancelled"
	case errors.As(err, &ae):
		return "assembly"
	default:
		return "other"
	}
}
