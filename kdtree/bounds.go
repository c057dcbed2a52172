package kdtree

import "fmt"

// BoundsFunc translates an item id into its AABB. minScratch and maxScratch
// are reusable vectors of length dims supplied by the tree so no per-call
// allocation is required; the callback must fill and return them without
// retaining them beyond the call. Returning a nil max (or a max equal to
// the returned min) signals a degenerate point box.
type BoundsFunc func(item int32, minScratch, maxScratch []float64) (min, max []float64, err error)

// Items enumerates the item ids a Build call should index, abstracting
// over index mode (a contiguous integer range) and object mode (an
// ordered list of caller-owned objects).
type Items interface {
	// Len returns the number of items.
	Len() int32
	// ID maps a 0-based position in [0, Len()) to the stored item id.
	ID(pos int32) int32
}

// IndexRange is index mode: items are the contiguous integer ids [Lo, Hi].
type IndexRange struct {
	Lo, Hi int32
}

func (r IndexRange) Len() int32 {
	if r.Hi < r.Lo {
		return 0
	}
	return r.Hi - r.Lo + 1
}

func (r IndexRange) ID(pos int32) int32 { return r.Lo + pos }

// ObjectCount is object mode: items are an ordered list of n opaque objects
// owned by the caller; the stored id is the object's 1-based position.
// Pair this with a BoundsFunc closure over the caller's object slice.
type ObjectCount int32

func (n ObjectCount) Len() int32        { return int32(n) }
func (n ObjectCount) ID(pos int32) int32 { return pos + 1 }

// resolveBounds calls fn for item, validating the returned vectors against dims
// and normalizing a point box (nil or identical max) to max == min.
func resolveBounds(fn BoundsFunc, item int32, dims int, minScratch, maxScratch []float64) (min, max []float64, err error) {
	min, max, err = fn(item, minScratch, maxScratch)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: item %d: %v", ErrCallback, item, err)
	}
	if len(min) != dims {
		return nil, nil, fmt.Errorf("%w: item %d min has %d components, want %d", ErrDimensionMismatch, item, len(min), dims)
	}
	if max == nil {
		max = min
	}
	if len(max) != dims {
		return nil, nil, fmt.Errorf("%w: item %d max has %d components, want %d", ErrDimensionMismatch, item, len(max), dims)
	}
	for a := 0; a < dims; a++ {
		if min[a] > max[a] {
			return nil, nil, fmt.Errorf("%w: item %d has min[%d]=%g > max[%d]=%g", ErrDimensionMismatch, item, a, min[a], a, max[a])
		}
	}
	return min, max, nil
}
