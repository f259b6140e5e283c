// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/preloadcache"
//	"github.com/unkn0wn-root/preloadcache/hooks/async"
//	"github.com/unkn0wn-root/preloadcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DuplicateEvery: 10, // sample logs: ~every 10th suppressed duplicate
//	    EvictedEvery:   1,  // log every eviction
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := preloadcache.New[TaskDetail](preloadcache.Options[TaskDetail]{
//	    Capacity: 10,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/preloadcache"
)

type Hooks struct {
	inner preloadcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ preloadcache.Hooks = (*Hooks)(nil)

func New(inner preloadcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) DuplicateSuppressed(k string) { h.try(func() { h.inner.DuplicateSuppressed(k) }) }
func (h *Hooks) Evicted(k string)             { h.try(func() { h.inner.Evicted(k) }) }
func (h *Hooks) StaleLoadDiscarded(k string)  { h.try(func() { h.inner.StaleLoadDiscarded(k) }) }
func (h *Hooks) LoadCompleted(k string, elapsed time.Duration) {
	h.try(func() { h.inner.LoadCompleted(k, elapsed) })
}
func (h *Hooks) LoadFailed(k string, reason error) {
	h.try(func() { h.inner.LoadFailed(k, reason) })
}
func (h *Hooks) BatchTruncated(requested, scheduled int) {
	h.try(func() { h.inner.BatchTruncated(requested, scheduled) })
}
