package graph

import "errors"

// Sentinel errors returned by the iterator/shape protocol and by QuadStore
// implementations. Callers should compare with errors.Is, since backends may
// wrap these with additional context.
var (
	// ErrCanceled is the error for an iteration cut short because its
	// context was done. No operator in graph/iterator checks its context or
	// returns this error.
	ErrCanceled = errors.New("graph: iteration canceled")

	// ErrNotFound is returned (wrapped) by RefsOf when a value has no
	// corresponding ref.
	ErrNotFound = errors.New("graph: value not found")

	// ErrQuadExists is returned (wrapped in a DeltaError) when ApplyDeltas
	// is asked to add a quad that is already present and IgnoreDup is not
	// set.
	ErrQuadExists = errors.New("graph: quad exists")

	// ErrQuadNotExist is returned (wrapped in a DeltaError) when
	// ApplyDeltas is asked to delete a quad that is not present and
	// IgnoreMissing is not set.
	ErrQuadNotExist = errors.New("graph: quad does not exist")

	// ErrInvalidAction is returned (wrapped in a DeltaError) for a Delta
	// whose Action is neither Add nor Delete.
	ErrInvalidAction = errors.New("graph: invalid delta action")
)

// BackendError wraps an error returned by a QuadStore implementation with
// the name of the backend that produced it, so a caller juggling several
// backends can tell them apart without type-asserting into
// backend-specific error types.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Backend == "" {
		return e.Err.Error()
	}
	return e.Backend + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// DeltaError records an error encountered while applying one Delta of a
// larger batch, so ApplyDeltas callers can tell which change failed.
type DeltaError struct {
	Delta Delta
	Err   error
}

func (e *DeltaError) Error() string {
	if !e.Delta.Quad.IsValid() {
		return e.Err.Error()
	}
	return e.Delta.Action.String() + " " + e.Delta.Quad.String() + ": " + e.Err.Error()
}

func (e *DeltaError) Unwrap() error { return e.Err }

// IsQuadExist reports whether err is a DeltaError wrapping ErrQuadExists.
func IsQuadExist(err error) bool {
	var de *DeltaError
	return errors.As(err, &de) && errors.Is(de.Err, ErrQuadExists)
}

// IsQuadNotExist reports whether err is a DeltaError wrapping ErrQuadNotExist.
func IsQuadNotExist(err error) bool {
	var de *DeltaError
	return errors.As(err, &de) && errors.Is(de.Err, ErrQuadNotExist)
}
