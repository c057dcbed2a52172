package kdtree

import "errors"

// Sentinel error kinds. Wrapped with fmt.Errorf("kdtree: ...: %w", ...) at
// the point of failure; test with errors.Is against these values.
var (
	// ErrCapacityExceeded is returned when a build exhausts a preallocated
	// arena limit (node or leaf count). The partially built tree is discarded.
	ErrCapacityExceeded = errors.New("kdtree: capacity exceeded")

	// ErrDimensionMismatch is returned when a bounds vector's length differs
	// from the tree's configured dimensionality.
	ErrDimensionMismatch = errors.New("kdtree: dimension mismatch")

	// ErrIO is returned on a file read/write/mmap failure during persistence.
	ErrIO = errors.New("kdtree: io error")

	// ErrParse is returned for a malformed text persistence file.
	ErrParse = errors.New("kdtree: parse error")

	// ErrCallback is returned when the caller's bounds callback fails.
	ErrCallback = errors.New("kdtree: callback error")
)
