package kdtree

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type box struct {
	min, max []float64
}

// boxBounds adapts a fixed id->box map into a BoundsFunc, filling the
// scratch vectors per the contract in bounds.go rather than allocating.
func boxBounds(boxes map[int32]box) BoundsFunc {
	return func(item int32, minScratch, maxScratch []float64) ([]float64, []float64, error) {
		b := boxes[item]
		copy(minScratch, b.min)
		if b.max == nil {
			return minScratch[:len(b.min)], nil, nil
		}
		copy(maxScratch, b.max)
		return minScratch[:len(b.min)], maxScratch[:len(b.max)], nil
	}
}

func collect(t *testing.T, tr *Tree, qMin, qMax []float64) []int32 {
	t.Helper()
	it, err := tr.Query(qMin, qMax)
	require.NoError(t, err)
	ids, err := it.Collect()
	require.NoError(t, err)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestEndToEndScenarios(t *testing.T) {
	boxes := map[int32]box{
		1: {min: []float64{0, 0}, max: []float64{1, 1}},
		2: {min: []float64{2, 2}, max: []float64{3, 3}},
		3: {min: []float64{0.5, 0.5}, max: []float64{2.5, 2.5}},
	}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 3}, Options{})
	require.NoError(t, err)

	ids := collect(t, tr, []float64{0.6, 0.6}, []float64{0.9, 0.9})
	require.Equal(t, []int32{1, 3}, ids)

	ids = collect(t, tr, []float64{2.6, 2.6}, []float64{2.9, 2.9})
	require.Equal(t, []int32{2, 3}, ids)
}

func TestSinglePointScenario(t *testing.T) {
	boxes := map[int32]box{1: {min: []float64{5, 5}, max: nil}}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 1}, Options{})
	require.NoError(t, err)

	ids := collect(t, tr, []float64{5, 5}, []float64{5, 5})
	require.Equal(t, []int32{1}, ids)
}

func TestNoOverlapAcrossDimensions(t *testing.T) {
	boxes := map[int32]box{1: {min: []float64{0, 0, 0}, max: []float64{1, 1, 1}}}
	tr, err := Build(boxBounds(boxes), 3, IndexRange{Lo: 1, Hi: 1}, Options{})
	require.NoError(t, err)

	ids := collect(t, tr, []float64{2, 2, 2}, []float64{3, 3, 3})
	require.Empty(t, ids)
}

func TestEmptyItemList(t *testing.T) {
	boxes := map[int32]box{}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 0}, Options{})
	require.NoError(t, err)

	ids := collect(t, tr, []float64{-1e9, -1e9}, []float64{1e9, 1e9})
	require.Empty(t, ids)
}

// All items identical: the splitter must fall back to a leaf instead of
// recursing forever.
func TestAllItemsIdenticalDoesNotRecurseForever(t *testing.T) {
	boxes := map[int32]box{}
	for i := int32(1); i <= 50; i++ {
		boxes[i] = box{min: []float64{1, 1}, max: []float64{2, 2}}
	}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 50}, Options{LeafSize: 4})
	require.NoError(t, err)

	ids := collect(t, tr, []float64{1.5, 1.5}, []float64{1.5, 1.5})
	require.Len(t, ids, 50)
}

func TestLeafSizeOneIsMaximallyDeepAndCorrect(t *testing.T) {
	boxes := map[int32]box{
		1: {min: []float64{0}, max: []float64{1}},
		2: {min: []float64{2}, max: []float64{3}},
		3: {min: []float64{4}, max: []float64{5}},
		4: {min: []float64{6}, max: []float64{7}},
	}
	tr, err := Build(boxBounds(boxes), 1, IndexRange{Lo: 1, Hi: 4}, Options{LeafSize: 1})
	require.NoError(t, err)

	require.Equal(t, []int32{2}, collect(t, tr, []float64{2.5}, []float64{2.5}))
	require.Empty(t, collect(t, tr, []float64{1.2}, []float64{1.8}))
}

func TestPointAndIntervalBoxesMixed(t *testing.T) {
	boxes := map[int32]box{
		1: {min: []float64{0, 0}, max: []float64{0, 0}},
		2: {min: []float64{0, 0}, max: []float64{5, 5}},
	}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 2}, Options{})
	require.NoError(t, err)

	require.Equal(t, []int32{1, 2}, collect(t, tr, []float64{0, 0}, []float64{0, 0}))
}

// No item id appears twice in a single query's yield.
func TestNoDuplicates(t *testing.T) {
	boxes := randomBoxes(2, 500, 42)
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{LeafSize: 8})
	require.NoError(t, err)

	it, err := tr.Query([]float64{0.3, 0.3}, []float64{0.7, 0.7})
	require.NoError(t, err)
	seen := map[int32]bool{}
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		require.False(t, seen[id], "duplicate item %d yielded", id)
		seen[id] = true
	}
	require.NoError(t, it.Err())
}

func randomBoxes(dims int, n int, seed int64) map[int32]box {
	r := rand.New(rand.NewSource(seed))
	boxes := make(map[int32]box, n)
	for i := 1; i <= n; i++ {
		min := make([]float64, dims)
		max := make([]float64, dims)
		for a := 0; a < dims; a++ {
			lo := r.Float64()
			span := r.Float64() * 0.5
			min[a] = lo
			max[a] = lo + span
		}
		boxes[int32(i)] = box{min: min, max: max}
	}
	return boxes
}

func bruteForce(boxes map[int32]box, qMin, qMax []float64) []int32 {
	var out []int32
	for id, b := range boxes {
		if overlaps(b.min, b.max, qMin, qMax) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Randomized brute-force oracle across dims 2..5.
func TestRandomizedAgainstBruteForce(t *testing.T) {
	for _, dims := range []int{2, 3, 4, 5} {
		boxes := randomBoxes(dims, 2000, int64(100+dims))
		tr, err := Build(boxBounds(boxes), dims, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{LeafSize: 16})
		require.NoError(t, err)

		r := rand.New(rand.NewSource(int64(dims)))
		for q := 0; q < 20; q++ {
			qMin := make([]float64, dims)
			qMax := make([]float64, dims)
			for a := 0; a < dims; a++ {
				lo := r.Float64()
				span := r.Float64() * 0.2
				qMin[a] = lo
				qMax[a] = lo + span
			}
			got := collect(t, tr, qMin, qMax)
			want := bruteForce(boxes, qMin, qMax)
			require.Equal(t, want, got, "dims=%d query=%d", dims, q)
		}
	}
}

// Leaf disjointness: every leaf's [first_item, last_item] range is disjoint
// from every other and together they cover [0, item_count).
func TestLeafDisjointness(t *testing.T) {
	boxes := randomBoxes(3, 300, 7)
	tr, err := Build(boxBounds(boxes), 3, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{LeafSize: 5})
	require.NoError(t, err)

	covered := make([]bool, tr.items.Count())
	for i := int32(0); i < tr.leaves.Count(); i++ {
		leaf, err := readLeaf(tr.leaves, i)
		require.NoError(t, err)
		for pos := leaf.firstItem; pos <= leaf.lastItem; pos++ {
			require.False(t, covered[pos], "item slot %d covered by more than one leaf", pos)
			covered[pos] = true
		}
	}
	for pos, c := range covered {
		require.True(t, c, "item slot %d not covered by any leaf", pos)
	}
}

// Bounds callback purity: repeating a query yields the same sequence.
func TestQueryRepeatability(t *testing.T) {
	boxes := randomBoxes(2, 200, 9)
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{})
	require.NoError(t, err)

	first := collect(t, tr, []float64{0.2, 0.2}, []float64{0.8, 0.8})
	second := collect(t, tr, []float64{0.2, 0.2}, []float64{0.8, 0.8})
	require.Equal(t, first, second)
}

func TestTextRoundTrip(t *testing.T) {
	boxes := randomBoxes(2, 800, 11)
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{LeafSize: 10})
	require.NoError(t, err)

	path := t.TempDir() + "/tree.txt"
	require.NoError(t, WriteText(tr, path))

	reloaded, err := ReadText(path, boxBounds(boxes), 2, nil)
	require.NoError(t, err)

	for q := 0; q < 10; q++ {
		qMin := []float64{0.1 * float64(q), 0.1 * float64(q)}
		qMax := []float64{0.1*float64(q) + 0.3, 0.1*float64(q) + 0.3}
		require.Equal(t, collect(t, tr, qMin, qMax), collect(t, reloaded, qMin, qMax))
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	boxes := randomBoxes(3, 600, 13)
	tr, err := Build(boxBounds(boxes), 3, IndexRange{Lo: 1, Hi: int32(len(boxes))}, Options{LeafSize: 20})
	require.NoError(t, err)

	dir := t.TempDir() + "/treebin"
	require.NoError(t, WriteBinary(tr, dir))

	reloaded, err := ReadBinary(dir, boxBounds(boxes), 3, nil)
	require.NoError(t, err)
	defer reloaded.Close()

	for q := 0; q < 10; q++ {
		qMin := []float64{0.1 * float64(q), 0.1 * float64(q), 0.1 * float64(q)}
		qMax := []float64{0.1*float64(q) + 0.3, 0.1*float64(q) + 0.3, 0.1*float64(q) + 0.3}
		require.Equal(t, collect(t, tr, qMin, qMax), collect(t, reloaded, qMin, qMax))
	}
}

func TestBinaryRoundTripSingleLeafTree(t *testing.T) {
	boxes := map[int32]box{1: {min: []float64{0, 0}, max: []float64{1, 1}}}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 1}, Options{})
	require.NoError(t, err)
	require.True(t, func() bool { isLeaf, _ := decodeRef(tr.root); return isLeaf }())

	dir := t.TempDir() + "/single"
	require.NoError(t, WriteBinary(tr, dir))
	reloaded, err := ReadBinary(dir, boxBounds(boxes), 2, nil)
	require.NoError(t, err)
	defer reloaded.Close()

	require.Equal(t, int32(-1), reloaded.root)
	require.Equal(t, []int32{1}, collect(t, reloaded, []float64{0.5, 0.5}, []float64{0.5, 0.5}))
}

func TestReadTextRejectsMalformedHeader(t *testing.T) {
	path := t.TempDir() + "/bad.txt"
	require.NoError(t, os.WriteFile(path, []byte("not-a-header\n"), 0o644))

	_, err := ReadText(path, boxBounds(nil), 2, nil)
	require.ErrorIs(t, err, ErrParse)
}

func TestReadTextRejectsTruncatedBody(t *testing.T) {
	path := t.TempDir() + "/truncated.txt"
	require.NoError(t, os.WriteFile(path, []byte("1\t0\t0\nN\t0\t0.5\n"), 0o644))

	_, err := ReadText(path, boxBounds(nil), 2, nil)
	require.ErrorIs(t, err, ErrParse)
}

func TestDimensionMismatchOnQuery(t *testing.T) {
	boxes := map[int32]box{1: {min: []float64{0, 0}, max: []float64{1, 1}}}
	tr, err := Build(boxBounds(boxes), 2, IndexRange{Lo: 1, Hi: 1}, Options{})
	require.NoError(t, err)

	_, err = tr.Query([]float64{0, 0, 0}, nil)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCallbackErrorPropagates(t *testing.T) {
	failing := func(item int32, minScratch, maxScratch []float64) ([]float64, []float64, error) {
		return nil, nil, errors.New("boom")
	}
	_, err := Build(failing, 2, IndexRange{Lo: 1, Hi: 1}, Options{})
	require.ErrorIs(t, err, ErrCallback)
}

func TestObjectModeIDsAreOneBasedPositions(t *testing.T) {
	boxes := map[int32]box{
		1: {min: []float64{0, 0}, max: []float64{1, 1}},
		2: {min: []float64{5, 5}, max: []float64{6, 6}},
		3: {min: []float64{10, 10}, max: []float64{11, 11}},
	}
	tr, err := Build(boxBounds(boxes), 2, ObjectCount(3), Options{})
	require.NoError(t, err)

	require.Equal(t, []int32{1}, collect(t, tr, []float64{0.5, 0.5}, []float64{0.5, 0.5}))
}

func TestSplitCostZeroLogZeroConvention(t *testing.T) {
	require.Equal(t, 0.0, xlogx(0))
	require.False(t, math.IsNaN(splitCost(0, 0, 0)))
}

// pushNode/pushLeaf raise ErrCapacityExceeded once the arena's overcommit
// guess is exhausted, independent of any Build-level behavior.
func TestArenaCapacityExceeded(t *testing.T) {
	a, err := newArena(2, 1, 1, "")
	require.NoError(t, err)
	a.nodeLimit = 1
	a.leafLimit = 1

	_, _, lerr := a.pushLeaf(1)
	require.NoError(t, lerr)
	_, _, lerr = a.pushLeaf(1)
	require.ErrorIs(t, lerr, ErrCapacityExceeded)

	_, nerr := a.pushNode(0, 0, 0, 0, 0)
	require.NoError(t, nerr)
	_, nerr = a.pushNode(0, 0, 0, 0, 0)
	require.ErrorIs(t, nerr, ErrCapacityExceeded)
}
