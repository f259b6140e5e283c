package preloadcache

import (
	"context"
	"time"
)

// Assembler builds the value for a key. It is supplied per call and may be
// slow (database read, view-state composition). Implementations must honor
// ctx cancellation: when the cache times out or invalidates a load, the
// assembler is told to stop via ctx, and cleanup of anything it opened is its
// own responsibility.
type Assembler[V any] func(ctx context.Context, key string) (V, error)

// Cache is the preload API. V is the caller's value type.
//
// Preload and PreloadBatch never return errors; a load's outcome is recorded
// in the key's Status and observed via Status/IsReady. A Failed key stays
// Failed until Preload is called for it again or it is invalidated.
type Cache[V any] interface {
	Enabled() bool
	Close(ctx context.Context) error

	// Preload assembles and stores the value for key unless the key is
	// already Loading or Completed. It blocks until the load settles
	// (success, failure, or timeout); run it in a goroutine to warm up in
	// the background.
	Preload(ctx context.Context, key string, assemble Assembler[V])

	// PreloadBatch preloads the first BatchWidth keys (caller order) that
	// are neither Loading nor Completed, concurrently, and waits for all of
	// them to settle. Keys beyond the width are dropped, not queued; call
	// again to pick up the rest.
	PreloadBatch(ctx context.Context, keys []string, assemble Assembler[V])

	// GetOrCreate returns the cached value when key is Completed. Otherwise
	// it returns a fresh placeholder immediately and, unless a load is
	// already in flight, starts one in the background. The placeholder is
	// never the cached instance: once IsReady reports true, re-query with
	// Get or GetOrCreate to observe the assembled value.
	GetOrCreate(ctx context.Context, key string, assemble Assembler[V]) V

	// Get returns the completed value for key, if any.
	Get(key string) (V, bool)

	// IsReady reports whether key is Completed with a stored value.
	IsReady(key string) bool

	// Status returns the key's current status; NotStarted if the key has
	// never been scheduled (or was invalidated).
	Status(key string) Status

	// Invalidate removes the key's value and status unconditionally. An
	// in-flight load for the key is cancelled and its eventual result
	// discarded.
	Invalidate(key string)

	// Clear removes all values, statuses, and in-flight bookkeeping.
	Clear()

	// Len is the number of completed entries currently stored.
	Len() int
}

// Options tune the cache. All fields have defaults; the zero Options is valid.
type Options[V any] struct {
	Capacity    int           // max completed entries; 0 => 10
	BatchWidth  int           // max loads per PreloadBatch call; 0 => 3
	LoadTimeout time.Duration // per-load budget; 0 => 8s

	// Placeholder builds the value GetOrCreate hands out while the real one
	// is still loading. Nil => zero V.
	Placeholder func(key string) V

	Logger   Logger // if nil, NopLogger is used
	Hooks    Hooks  // if nil, NopHooks is used
	Disabled bool   // kill-switch: every operation becomes a no-op
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
