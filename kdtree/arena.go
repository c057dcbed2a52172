package kdtree

import (
	"fmt"

	"github.com/btree-query-bench/kdindex/kdtree/pagestore"
)

// arena is the contiguous, append-only backing store for a build: a node
// record store, a leaf record store, and a flat item-id run — each backed
// by a pagestore.Store so the build, in-memory query and on-disk reload
// paths all read through the same Read(id) shape.
//
// Node and leaf stores are heuristically sized the way the original
// source overcommits page arrays — 4*ceil(itemCount/leafSize) — and raise
// ErrCapacityExceeded if that guess is exceeded. The item run itself
// grows dynamically (Reserve) instead of needing its own overcommit guess.
type arena struct {
	dims      int
	nodes     *pagestore.Store
	leaves    *pagestore.Store
	items     *pagestore.Store
	nodeLimit int32
	leafLimit int32
}

func newArena(dims int, itemCount, leafSize int32, spillDir string) (*arena, error) {
	if leafSize < 1 {
		leafSize = 1
	}
	groups := (itemCount + leafSize - 1) / leafSize
	if groups < 1 {
		groups = 1
	}
	limit := 4 * groups

	var nodes, leaves, items *pagestore.Store
	if spillDir == "" {
		nodes = pagestore.NewMemory(nodeRecordSize)
		leaves = pagestore.NewMemory(leafRecordSize)
		items = pagestore.NewMemory(itemRecordSize)
	} else {
		var err error
		nodes, err = pagestore.Open(spillDir+"/nodes", nodeRecordSize, 256)
		if err != nil {
			return nil, fmt.Errorf("kdtree: %w", err)
		}
		leaves, err = pagestore.Open(spillDir+"/leaves", leafRecordSize, 256)
		if err != nil {
			return nil, fmt.Errorf("kdtree: %w", err)
		}
		items, err = pagestore.Open(spillDir+"/items", itemRecordSize, 1024)
		if err != nil {
			return nil, fmt.Errorf("kdtree: %w", err)
		}
	}

	return &arena{
		dims:      dims,
		nodes:     nodes,
		leaves:    leaves,
		items:     items,
		nodeLimit: limit,
		leafLimit: limit,
	}, nil
}

// newReloadArena builds an arena for a text or binary reload where the
// final node/leaf counts are already known from the file's header, so no
// overcommit guess is needed: the limits are set to the exact expected
// counts and any overrun means the file disagrees with its own header.
func newReloadArena(dims int, nodeCount, leafCount int32) *arena {
	return &arena{
		dims:      dims,
		nodes:     pagestore.NewMemory(nodeRecordSize),
		leaves:    pagestore.NewMemory(leafRecordSize),
		items:     pagestore.NewMemory(itemRecordSize),
		nodeLimit: nodeCount,
		leafLimit: leafCount,
	}
}

// pushNode appends an internal node and returns its non-negative arena reference.
func (a *arena) pushNode(axis int32, split float64, low, mid, high int32) (int32, error) {
	id, err := a.nodes.Allocate()
	if err != nil {
		return 0, fmt.Errorf("kdtree: %w", err)
	}
	if id >= a.nodeLimit {
		return 0, fmt.Errorf("%w: node count %d exceeds limit %d", ErrCapacityExceeded, id+1, a.nodeLimit)
	}
	rec := encodeNode(nodeRecord{axis: axis, split: split, low: low, mid: mid, high: high})
	if err := a.nodes.Write(id, rec); err != nil {
		return 0, fmt.Errorf("kdtree: %w", err)
	}
	return id, nil
}

// pushLeaf reserves size contiguous item slots and returns the encoded leaf
// reference and the base offset the caller should fill in.
func (a *arena) pushLeaf(size int32) (leafRef int32, itemBase int32, err error) {
	id, err := a.leaves.Allocate()
	if err != nil {
		return 0, 0, fmt.Errorf("kdtree: %w", err)
	}
	if id >= a.leafLimit {
		return 0, 0, fmt.Errorf("%w: leaf count %d exceeds limit %d", ErrCapacityExceeded, id+1, a.leafLimit)
	}
	base, err := a.items.Reserve(size)
	if err != nil {
		return 0, 0, fmt.Errorf("kdtree: %w", err)
	}
	rec := encodeLeaf(leafRecord{firstItem: base, lastItem: base + size - 1})
	if err := a.leaves.Write(id, rec); err != nil {
		return 0, 0, fmt.Errorf("kdtree: %w", err)
	}
	return encodeLeafRef(id), base, nil
}

func (a *arena) setItem(pos int32, id int32) error {
	if err := a.items.Write(pos, encodeItem(id)); err != nil {
		return fmt.Errorf("kdtree: %w", err)
	}
	return nil
}

