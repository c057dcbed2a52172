package kdtree

import "math"

// builder carries the per-build state the recursive splitter needs: the
// arena it emits into and the configured leaf size.
type builder struct {
	arena    *arena
	leafSize int32
}

// split is the recursive construction core. It chooses the best (axis,
// coordinate) three-way split over the current per-axis sorted event
// lists, partitions them, recurses, and emits an internal node — or falls
// back to a leaf on termination or degeneracy.
func (b *builder) split(axes [][]event, n int32) (int32, error) {
	if n < b.leafSize {
		return b.buildLeaf(axes)
	}

	best, ok := bestSplit(axes, n)
	if !ok || best.l == n || best.h == n || best.m == n {
		// Degenerate: every candidate sends everything to one side (or, for
		// a set of coincident/identical boxes, every item straddles every
		// candidate plane so everything lands in mid). No candidate is
		// recorded at all when n == 0. Recursing further would never
		// terminate, so collapse to a single leaf.
		return b.buildLeaf(axes)
	}

	lowSet, midSet, highSet := classifyItems(axes[best.axis], best.x)

	lowAxes := make([][]event, len(axes))
	midAxes := make([][]event, len(axes))
	highAxes := make([][]event, len(axes))
	for a := range axes {
		lowAxes[a] = filterAxis(axes[a], lowSet)
		midAxes[a] = filterAxis(axes[a], midSet)
		highAxes[a] = filterAxis(axes[a], highSet)
	}

	lowRef, err := b.split(lowAxes, best.l)
	if err != nil {
		return 0, err
	}
	highRef, err := b.split(highAxes, best.h)
	if err != nil {
		return 0, err
	}
	midRef, err := b.split(midAxes, best.m)
	if err != nil {
		return 0, err
	}

	return b.arena.pushNode(best.axis, best.x, lowRef, midRef, highRef)
}

// buildLeaf emits a leaf whose item run holds exactly one id per distinct
// item in axes[0] — the open or point event of each.
func (b *builder) buildLeaf(axes [][]event) (int32, error) {
	var firstAxis []event
	if len(axes) > 0 {
		firstAxis = axes[0]
	}

	ids := make([]int32, 0, len(firstAxis))
	for _, e := range firstAxis {
		if e.kind >= eventPoint {
			ids = append(ids, e.item)
		}
	}

	ref, base, err := b.arena.pushLeaf(int32(len(ids)))
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := b.arena.setItem(base+int32(i), id); err != nil {
			return 0, err
		}
	}
	return ref, nil
}

// splitCandidate is a scored (axis, coordinate) split point.
type splitCandidate struct {
	axis    int32
	x       float64
	l, m, h int32
	cost    float64
}

// bestSplit sweeps every axis's sorted event list, evaluating the
// three-way-split cost after each tie group, and returns the global
// minimum-cost candidate.
func bestSplit(axes [][]event, n int32) (splitCandidate, bool) {
	var best splitCandidate
	found := false

	for a, events := range axes {
		if len(events) == 0 {
			continue
		}
		l, m, h := int32(0), int32(0), n

		i := 0
		for i < len(events) {
			x0 := events[i].x
			j := i
			for j < len(events) && events[j].x == x0 {
				j++
			}
			for _, e := range events[i:j] {
				if e.kind >= eventPoint {
					m++
					h--
				}
				if e.kind <= eventPoint {
					m--
					l++
				}
			}

			cost := splitCost(l, m, h)
			if !found || cost < best.cost {
				best = splitCandidate{axis: int32(a), x: x0, l: l, m: m, h: h, cost: cost}
				found = true
			}
			i = j
		}
	}

	return best, found
}

// splitCost is the weighted-entropy split heuristic, with the convention
// 0*log(0) = 0.
func splitCost(l, m, h int32) float64 {
	lm := l + m
	mh := m + h
	denom := float64(lm + mh)
	if denom == 0 {
		return 0
	}
	return (xlogx(lm) + xlogx(mh)) / denom
}

func xlogx(v int32) float64 {
	if v <= 0 {
		return 0
	}
	fv := float64(v)
	return fv * math.Log(fv)
}

// classifyItems scans the chosen axis's events once to recover each item's
// (min, max) on that axis, then buckets items into low/mid/high sets
// against splitX.
func classifyItems(events []event, splitX float64) (low, mid, high map[int32]bool) {
	type bounds struct{ min, max float64 }
	seen := make(map[int32]bounds, len(events))
	for _, e := range events {
		b := seen[e.item]
		switch e.kind {
		case eventOpen:
			b.min = e.x
		case eventClose:
			b.max = e.x
		case eventPoint:
			b.min, b.max = e.x, e.x
		}
		seen[e.item] = b
	}

	low = make(map[int32]bool, len(seen))
	mid = make(map[int32]bool)
	high = make(map[int32]bool)
	for item, b := range seen {
		switch {
		case b.max <= splitX:
			low[item] = true
		case b.min > splitX:
			high[item] = true
		default:
			mid[item] = true
		}
	}
	return low, mid, high
}
