package preloadcache

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout marks a load that did not settle within LoadTimeout.
	ErrTimeout = errors.New("preloadcache: load timed out")

	// ErrCancelled marks a load whose caller context was cancelled before
	// the assembly finished. Loads killed by Invalidate/Clear/Close leave no
	// status behind at all.
	ErrCancelled = errors.New("preloadcache: load cancelled")
)

// AssemblyError wraps a failure returned by the assembler itself.
type AssemblyError struct {
	Key string
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %q failed: %v", e.Key, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
