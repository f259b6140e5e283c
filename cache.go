package preloadcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/preloadcache/internal/keyq"
)

const (
	defaultCapacity    = 10
	defaultBatchWidth  = 3
	defaultLoadTimeout = 8 * time.Second
)

// inflight is the handle for one scheduled load. A load may commit its result
// only while c.inflight still maps its key to this exact handle; Invalidate,
// Clear, and Close break that mapping, so late results are discarded instead
// of resurrecting removed keys.
type inflight struct {
	cancel context.CancelFunc
}

type loadResult[V any] struct {
	val V
	err error
}

type cache[V any] struct {
	capacity    int
	batchWidth  int
	loadTimeout time.Duration
	placeholder func(string) V
	log         Logger
	hooks       Hooks
	enabled     bool

	// mu guards everything below. All map accesses are point operations;
	// eviction pops from the queue one key at a time.
	mu       sync.Mutex
	entries  map[string]V
	statuses map[string]Status
	order    *keyq.Queue // insertion order of completed entries
	inflight map[string]*inflight
	closed   bool

	loadWg    sync.WaitGroup // background loads started by GetOrCreate
	closeOnce sync.Once
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("preloadcache: capacity must be >= 0, got %d", opts.Capacity)
	}
	if opts.BatchWidth < 0 {
		return nil, fmt.Errorf("preloadcache: batch width must be >= 0, got %d", opts.BatchWidth)
	}
	if opts.LoadTimeout < 0 {
		return nil, fmt.Errorf("preloadcache: load timeout must be >= 0, got %v", opts.LoadTimeout)
	}

	c := &cache[V]{
		entries:  make(map[string]V),
		statuses: make(map[string]Status),
		order:    keyq.New(),
		inflight: make(map[string]*inflight),
		enabled:  !opts.Disabled,
	}

	// defaults
	c.capacity = coalesce(opts.Capacity, defaultCapacity)
	c.batchWidth = coalesce(opts.BatchWidth, defaultBatchWidth)
	c.loadTimeout = coalesce(opts.LoadTimeout, defaultLoadTimeout)
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	if opts.Placeholder != nil {
		c.placeholder = opts.Placeholder
	} else {
		c.placeholder = func(string) V { var zero V; return zero }
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Preload(ctx context.Context, key string, assemble Assembler[V]) {
	if !c.enabled {
		return
	}
	h, lctx, ok := c.begin(ctx, key)
	if !ok {
		return
	}
	c.load(lctx, key, h, assemble)
}

func (c *cache[V]) PreloadBatch(ctx context.Context, keys []string, assemble Assembler[V]) {
	if !c.enabled || len(keys) == 0 {
		return
	}

	eligible := c.eligible(keys)
	if len(eligible) == 0 {
		return
	}

	scheduled := eligible
	if len(scheduled) > c.batchWidth {
		// deliberate throttle: the remainder is dropped, not queued
		scheduled = scheduled[:c.batchWidth]
		c.hooks.BatchTruncated(len(eligible), len(scheduled))
		c.log.Debug("batch truncated", Fields{"eligible": len(eligible), "scheduled": len(scheduled)})
	}

	// no shared context: one child's failure must not cancel siblings,
	// and Preload never returns an error anyway
	var g errgroup.Group
	for _, k := range scheduled {
		k := k
		g.Go(func() error {
			c.Preload(ctx, k, assemble)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *cache[V]) GetOrCreate(ctx context.Context, key string, assemble Assembler[V]) V {
	if !c.enabled {
		return c.placeholder(key)
	}

	c.mu.Lock()
	if c.statuses[key].State == StateCompleted {
		v := c.entries[key]
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	// The warmup must outlive the caller's (often per-frame) context; only
	// the load timeout bounds it.
	h, lctx, ok := c.begin(context.WithoutCancel(ctx), key)
	if ok {
		c.loadWg.Add(1)
		go func() {
			defer c.loadWg.Done()
			c.load(lctx, key, h, assemble)
		}()
	}
	return c.placeholder(key)
}

func (c *cache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statuses[key].State != StateCompleted {
		return zero, false
	}
	return c.entries[key], true
}

func (c *cache[V]) IsReady(key string) bool {
	if !c.enabled {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, present := c.entries[key]
	return c.statuses[key].State == StateCompleted && present
}

func (c *cache[V]) Status(key string) Status {
	if !c.enabled {
		return Status{State: StateNotStarted}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.statuses[key]; ok {
		return st
	}
	return Status{State: StateNotStarted}
}

func (c *cache[V]) Invalidate(key string) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	h := c.inflight[key]
	delete(c.inflight, key)
	delete(c.entries, key)
	delete(c.statuses, key)
	c.order.Remove(key)
	c.mu.Unlock()

	if h != nil {
		h.cancel()
	}
	c.log.Debug("invalidated key", Fields{"key": key, "in_flight": h != nil})
}

func (c *cache[V]) Clear() {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	handles := make([]*inflight, 0, len(c.inflight))
	for _, h := range c.inflight {
		handles = append(handles, h)
	}
	c.inflight = make(map[string]*inflight)
	c.entries = make(map[string]V)
	c.statuses = make(map[string]Status)
	c.order.Reset()
	c.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}
	c.log.Debug("cleared cache", Fields{"cancelled_loads": len(handles)})
}

func (c *cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels in-flight loads, drops all state, and waits (bounded by ctx)
// for background loads started by GetOrCreate to drain.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		handles := make([]*inflight, 0, len(c.inflight))
		for _, h := range c.inflight {
			handles = append(handles, h)
		}
		c.inflight = make(map[string]*inflight)
		c.entries = make(map[string]V)
		c.statuses = make(map[string]Status)
		c.order.Reset()
		c.mu.Unlock()

		for _, h := range handles {
			h.cancel()
		}
	})

	done := make(chan struct{})
	go func() {
		c.loadWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin transitions key into Loading and registers an in-flight handle. It
// reports ok=false when the key is already Loading or Completed (or the cache
// is closed); the read-check and the write happen under one lock, so two
// racing callers cannot both schedule a load.
func (c *cache[V]) begin(ctx context.Context, key string) (*inflight, context.Context, bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, false
	}
	switch c.statuses[key].State {
	case StateLoading:
		c.mu.Unlock()
		c.hooks.DuplicateSuppressed(key)
		c.log.Debug("preload suppressed (already loading)", Fields{"key": key})
		return nil, nil, false
	case StateCompleted:
		c.mu.Unlock()
		return nil, nil, false
	}

	lctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	h := &inflight{cancel: cancel}
	c.inflight[key] = h
	c.statuses[key] = Status{State: StateLoading}
	c.mu.Unlock()
	return h, lctx, true
}

// load races the assembler against the handle's deadline and settles the key.
// Cancellation is cooperative: when the timer wins, the assembler is signaled
// through ctx but its underlying work is not guaranteed to stop.
func (c *cache[V]) load(ctx context.Context, key string, h *inflight, assemble Assembler[V]) {
	defer h.cancel()

	start := time.Now()
	res := make(chan loadResult[V], 1)
	go func() {
		v, err := assemble(ctx, key)
		res <- loadResult[V]{val: v, err: err}
	}()

	var out loadResult[V]
	select {
	case out = <-res:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	c.settle(key, h, out.val, c.classify(key, out.err), time.Since(start))
}

func (c *cache[V]) classify(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	default:
		return &AssemblyError{Key: key, Err: err}
	}
}

// settle commits a load's outcome. The handle check is the stale-write guard:
// if the key was invalidated, cleared, or the cache closed since begin, the
// handle no longer matches and the result is dropped on the floor.
func (c *cache[V]) settle(key string, h *inflight, val V, reason error, elapsed time.Duration) {
	c.mu.Lock()
	if c.inflight[key] != h {
		c.mu.Unlock()
		c.hooks.StaleLoadDiscarded(key)
		c.log.Debug("stale load discarded", Fields{"key": key})
		return
	}
	delete(c.inflight, key)

	if reason != nil {
		c.statuses[key] = Status{State: StateFailed, Err: reason}
		c.mu.Unlock()
		c.hooks.LoadFailed(key, reason)
		if errors.Is(reason, ErrTimeout) {
			c.log.Warn("load timed out", Fields{"key": key, "timeout": c.loadTimeout})
		} else {
			c.log.Debug("load failed", Fields{"key": key, "err": reason})
		}
		return
	}

	c.entries[key] = val
	c.statuses[key] = Status{State: StateCompleted}
	c.order.Push(key)
	evicted := c.evictLocked()
	c.mu.Unlock()

	for _, k := range evicted {
		c.hooks.Evicted(k)
	}
	if len(evicted) > 0 {
		c.log.Debug("evicted oldest entries", Fields{"count": len(evicted)})
	}
	c.hooks.LoadCompleted(key, elapsed)
}

// evictLocked removes the oldest-inserted entries until the count is back
// within capacity. Only completed entries live in the queue, so in-flight
// bookkeeping is never touched here. Caller holds c.mu.
func (c *cache[V]) evictLocked() []string {
	over := len(c.entries) - c.capacity
	if over <= 0 {
		return nil
	}
	evicted := make([]string, 0, over)
	for i := 0; i < over; i++ {
		k, ok := c.order.PopOldest()
		if !ok {
			break
		}
		delete(c.entries, k)
		delete(c.statuses, k)
		evicted = append(evicted, k)
	}
	return evicted
}

// eligible filters keys down to those a batch may schedule: not Loading, not
// Completed, duplicates within the request collapsed. Caller order preserved.
func (c *cache[V]) eligible(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		switch c.statuses[k].State {
		case StateLoading, StateCompleted:
			continue
		}
		out = append(out, k)
	}
	return out
}
