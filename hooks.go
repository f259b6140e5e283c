package preloadcache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A load settled successfully and the value was stored.
	LoadCompleted(key string, elapsed time.Duration)

	// A load settled with an error; reason is what landed in Status.Err
	// (ErrTimeout, ErrCancelled, or *AssemblyError).
	LoadFailed(key string, reason error)

	// Preload found the key already Loading and started no work.
	DuplicateSuppressed(key string)

	// PreloadBatch had more eligible keys than BatchWidth; scheduled were
	// started, the rest dropped.
	BatchTruncated(requested, scheduled int)

	// A completed entry was removed by the capacity check (oldest first).
	Evicted(key string)

	// A load settled after its key was invalidated or the cache cleared;
	// the result was discarded.
	StaleLoadDiscarded(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LoadCompleted(string, time.Duration) {}
func (NopHooks) LoadFailed(string, error)            {}
func (NopHooks) DuplicateSuppressed(string)          {}
func (NopHooks) BatchTruncated(int, int)             {}
func (NopHooks) Evicted(string)                      {}
func (NopHooks) StaleLoadDiscarded(string)           {}
