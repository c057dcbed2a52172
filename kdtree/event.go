package kdtree

import "sort"

// eventKind classifies where an item's extent starts, ends, or sits on an axis.
type eventKind int8

const (
	eventClose eventKind = -1
	eventPoint eventKind = 0
	eventOpen  eventKind = 1
)

// event is a build-time-only record: an item's contribution to one axis's
// sorted sweep line.
type event struct {
	x    float64
	kind eventKind
	item int32
}

// generateEvents builds the per-axis sorted event lists for every item
// enumerated by items, resolving bounds through fn.
func generateEvents(items Items, fn BoundsFunc, dims int) (axes [][]event, err error) {
	n := items.Len()
	axes = make([][]event, dims)
	for a := range axes {
		axes[a] = make([]event, 0, n)
	}

	minScratch := make([]float64, dims)
	maxScratch := make([]float64, dims)
	for pos := int32(0); pos < n; pos++ {
		id := items.ID(pos)
		min, max, err := resolveBounds(fn, id, dims, minScratch, maxScratch)
		if err != nil {
			return nil, err
		}
		for a := 0; a < dims; a++ {
			if max[a] != min[a] {
				axes[a] = append(axes[a], event{x: min[a], kind: eventOpen, item: id})
				axes[a] = append(axes[a], event{x: max[a], kind: eventClose, item: id})
			} else {
				axes[a] = append(axes[a], event{x: min[a], kind: eventPoint, item: id})
			}
		}
	}

	for a := range axes {
		sortEvents(axes[a])
	}
	return axes, nil
}

// sortEvents orders events ascending by x. Ties are left in input order
// (stable sort) — the splitter processes every event sharing one x as a
// single atomic group, so intra-tie order never affects correctness.
func sortEvents(e []event) {
	sort.SliceStable(e, func(i, j int) bool { return e[i].x < e[j].x })
}

// filterAxis returns the subsequence of axis events belonging to items in
// keep, preserving relative order. Used by the splitter to build each
// child's per-axis event lists.
func filterAxis(axis []event, keep map[int32]bool) []event {
	out := make([]event, 0, len(axis))
	for _, e := range axis {
		if keep[e.item] {
			out = append(out, e)
		}
	}
	return out
}
