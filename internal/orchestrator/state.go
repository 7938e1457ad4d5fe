package orchestrator

import "fmt"

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// FetchState is what the view sees for one resource. Data is only set
// when Ready and Err only when Failed; a new request clears both.
type FetchState[T any] struct {
	Status Status
	Data   T
	Err    string
}

func loading[T any]() FetchState[T] {
	return FetchState[T]{Status: Loading}
}

func ready[T any](data T) FetchState[T] {
	return FetchState[T]{Status: Ready, Data: data}
}

func failed[T any](msg string) FetchState[T] {
	return FetchState[T]{Status: Failed, Err: msg}
}

// Resource names one FetchState slot.
type Resource int

const (
	// ResourceSnapshot holds either the latest snapshot or the open
	// archive entry; only one is shown at a time.
	ResourceSnapshot Resource = iota
	ResourceIndex
	ResourceStats
	numResources
)

func (r Resource) String() string {
	switch r {
	case ResourceSnapshot:
		return "snapshot"
	case ResourceIndex:
		return "archive_index"
	case ResourceStats:
		return "stats"
	default:
		return fmt.Sprintf("Resource(%d)", int(r))
	}
}
