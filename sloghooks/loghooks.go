package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/preloadcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DuplicateEvery uint64
	EvictedEvery   uint64
	CompletedEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	dupCtr   atomic.Uint64
	evictCtr atomic.Uint64
	doneCtr  atomic.Uint64
}

var _ preloadcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LoadCompleted(key string, elapsed time.Duration) {
	if h.l == nil || !sample(h.opts.CompletedEvery, &h.doneCtr) {
		return
	}
	h.l.Debug("preloadcache.load_completed",
		"key", key,
		"elapsed", elapsed)
}

func (h *Hooks) LoadFailed(key string, reason error) {
	if h.l == nil {
		return
	}
	h.l.Warn("preloadcache.load_failed",
		"key", key,
		"reason", reason)
}

func (h *Hooks) DuplicateSuppressed(key string) {
	if h.l == nil || !sample(h.opts.DuplicateEvery, &h.dupCtr) {
		return
	}
	h.l.Debug("preloadcache.duplicate_suppressed",
		"key", key)
}

func (h *Hooks) BatchTruncated(requested, scheduled int) {
	if h.l == nil {
		return
	}
	h.l.Info("preloadcache.batch_truncated",
		"requested", requested,
		"scheduled", scheduled)
}

func (h *Hooks) Evicted(key string) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictCtr) {
		return
	}
	h.l.Debug("preloadcache.evicted",
		"key", key)
}

func (h *Hooks) StaleLoadDiscarded(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("preloadcache.stale_load_discarded",
		"key", key)
}
