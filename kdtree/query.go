package kdtree

// Iterator yields item ids from a single query via an explicit-stack,
// left-first DFS over the arena. Abandoning iteration early leaks
// nothing: the only state is the stack and the current leaf's remaining
// ids, both held here.
type Iterator struct {
	tree *Tree
	qMin []float64
	qMax []float64
	dims int

	stack []int32

	leafIDs []int32
	leafPos int

	minScratch []float64
	maxScratch []float64

	err  error
	done bool
}

func newIterator(t *Tree, qMin, qMax []float64) *Iterator {
	it := &Iterator{
		tree:       t,
		qMin:       qMin,
		qMax:       qMax,
		dims:       t.dims,
		minScratch: make([]float64, t.dims),
		maxScratch: make([]float64, t.dims),
	}
	it.stack = append(it.stack, t.root)
	return it
}

// Next advances the iterator, returning the next overlapping item id and
// true, or (0, false) once the query is exhausted or fails. Call Err after
// a false result to distinguish the two.
func (it *Iterator) Next() (int32, bool) {
	if it.done {
		return 0, false
	}

	for {
		for it.leafPos < len(it.leafIDs) {
			id := it.leafIDs[it.leafPos]
			it.leafPos++

			min, max, err := resolveBounds(it.tree.bounds, id, it.dims, it.minScratch, it.maxScratch)
			if err != nil {
				it.fail(err)
				return 0, false
			}
			if overlaps(min, max, it.qMin, it.qMax) {
				recordQueryYield(it.dims)
				return id, true
			}
		}

		if len(it.stack) == 0 {
			it.done = true
			return 0, false
		}

		ref := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		isLeaf, idx := decodeRef(ref)
		if isLeaf {
			if err := it.loadLeaf(idx); err != nil {
				it.fail(err)
				return 0, false
			}
			continue
		}

		node, err := readNode(it.tree.nodes, idx)
		if err != nil {
			it.fail(err)
			return 0, false
		}
		it.pushChildren(node)
	}
}

// pushChildren descends: low is taken when the query reaches below the
// split, high when it reaches above, and mid always — mid-straddlers may
// intersect a query on either side of the plane. The push order leaves
// low on top of the stack so it pops (and is visited) first, giving a
// left-first DFS order.
func (it *Iterator) pushChildren(node nodeRecord) {
	a := int(node.axis)
	if it.qMax[a] >= node.split {
		it.stack = append(it.stack, node.high)
	}
	it.stack = append(it.stack, node.mid)
	if it.qMin[a] <= node.split {
		it.stack = append(it.stack, node.low)
	}
}

func (it *Iterator) loadLeaf(idx int32) error {
	leaf, err := readLeaf(it.tree.leaves, idx)
	if err != nil {
		return err
	}
	it.leafIDs = it.leafIDs[:0]
	for pos := leaf.firstItem; pos <= leaf.lastItem; pos++ {
		id, err := readItem(it.tree.items, pos)
		if err != nil {
			return err
		}
		it.leafIDs = append(it.leafIDs, id)
	}
	it.leafPos = 0
	return nil
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.done = true
}

// Err returns the first error encountered during the descent, if any. Call
// after Next returns false.
func (it *Iterator) Err() error { return it.err }

// Collect drains the iterator into a slice. Convenience for small result
// sets and tests; large queries should use Next directly.
func (it *Iterator) Collect() ([]int32, error) {
	var out []int32
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, id)
	}
	return out, it.Err()
}
