package preloadcache

// State is the per-key load progress.
type State uint8

const (
	StateNotStarted State = iota
	StateLoading
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateLoading:
		return "loading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status describes a key's load progress. Err is non-nil only for StateFailed
// and carries the failure reason: ErrTimeout, ErrCancelled, or an
// *AssemblyError wrapping what the assembler returned.
type Status struct {
	State State
	Err   error
}
