package kdtree

import (
	"fmt"
	"io"
	"time"
)

// defaultLeafSize is the leaf size a Build call uses when Options.LeafSize
// is left zero.
const defaultLeafSize = 100

// Tree is a built, read-only k-d spatial index. Once Build, ReadText or
// ReadBinary returns one, its topology never changes again. Concurrent
// Query calls from separate goroutines are safe on an in-memory tree and
// on one returned by ReadText or ReadBinary. A tree built with
// Options.SpillDir reads records through an LRU cache that every query
// updates without locking, so its queries are not safe to run concurrently.
type Tree struct {
	dims     int
	leafSize int32
	bounds   BoundsFunc

	nodes  recordSource
	leaves recordSource
	items  recordSource

	root    int32
	closers []io.Closer
}

// Options configures a Build call.
type Options struct {
	// LeafSize caps the item count under which the splitter stops
	// recursing and emits a leaf directly. Zero means defaultLeafSize.
	LeafSize int32
	// SpillDir, if non-empty, backs the arena's node/leaf/item stores with
	// files named nodes, leaves and items in that directory instead of
	// memory. Those files use the binary persistence layout, so ReadBinary
	// can open the directory directly; WriteBinary still copies every record.
	SpillDir string
}

// Build constructs a tree over items, resolving each item's AABB through
// bounds.
func Build(bounds BoundsFunc, dims int, items Items, opts Options) (*Tree, error) {
	if dims < 1 {
		return nil, fmt.Errorf("kdtree: dims must be >= 1, got %d", dims)
	}
	leafSize := opts.LeafSize
	if leafSize < 1 {
		leafSize = defaultLeafSize
	}

	start := time.Now()
	n := items.Len()

	axes, err := generateEvents(items, bounds, dims)
	if err != nil {
		return nil, err
	}

	a, err := newArena(dims, n, leafSize, opts.SpillDir)
	if err != nil {
		return nil, err
	}

	b := &builder{arena: a, leafSize: leafSize}
	root, err := b.split(axes, n)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		dims:     dims,
		leafSize: leafSize,
		bounds:   bounds,
		nodes:    a.nodes,
		leaves:   a.leaves,
		items:    a.items,
		root:     root,
	}
	if opts.SpillDir != "" {
		t.closers = []io.Closer{a.nodes, a.leaves, a.items}
	}

	recordBuild(dims, a.nodes.Count(), a.leaves.Count(), time.Since(start))
	return t, nil
}

// Query returns an iterator over items whose AABB overlaps [qMin, qMax].
// qMax defaults to qMin for a point query.
func (t *Tree) Query(qMin, qMax []float64) (*Iterator, error) {
	if len(qMin) != t.dims {
		return nil, fmt.Errorf("%w: query min has %d components, want %d", ErrDimensionMismatch, len(qMin), t.dims)
	}
	if qMax == nil {
		qMax = qMin
	}
	if len(qMax) != t.dims {
		return nil, fmt.Errorf("%w: query max has %d components, want %d", ErrDimensionMismatch, len(qMax), t.dims)
	}

	recordQueryStarted(t.dims)
	return newIterator(t, qMin, qMax), nil
}

// Dims returns the tree's configured dimensionality.
func (t *Tree) Dims() int { return t.dims }

// LeafSize returns the leaf_size the tree was built with.
func (t *Tree) LeafSize() int32 { return t.leafSize }

// Close releases any file or memory-map resources backing the tree. Safe
// to call on a tree built or reloaded entirely in memory (a no-op).
func (t *Tree) Close() error {
	var first error
	for _, c := range t.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
