// Package preloadcache implements a capacity-bounded, key-addressed store that
// materializes expensive per-key values ahead of when callers need them, so a
// read at display time is a map lookup instead of a round trip.
//
// Components:
//   - Assembler[V]: caller-supplied capability that builds a value for a key.
//     The cache never knows how a value is made.
//   - Status: per-key state machine (NotStarted -> Loading -> Completed/Failed).
//   - Hooks: lightweight callbacks for high-signal events (completions,
//     failures, evictions, suppressed duplicates).
//
// Loads race a per-load timeout; the first of {assembly, timer} to finish
// decides the outcome. Concurrent loads for the same key are deduplicated via
// an in-flight handle table guarded by the cache mutex. When the entry count
// exceeds capacity, the oldest-inserted entries are evicted first (strict
// insertion order, not recency), together with their status records.
//
// Load errors are never returned to Preload/PreloadBatch callers; they are
// recorded in the key's Status and observed by polling. A Failed key is never
// retried by the cache itself - call Preload again to retry.
package preloadcache
