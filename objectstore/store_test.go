package objectstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btree-query-bench/kdindex/kdtree"
)

func TestPutGetRoundTripThroughBounds(t *testing.T) {
	dir := t.TempDir() + "/objstore"
	s, err := Open(dir, 3)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(1, []float64{1, 2, 3}, []float64{4, 5, 6}))
	require.NoError(t, s.Put(2, []float64{0, 0, 0}, nil))

	bounds := s.Bounds()
	minScratch := make([]float64, 3)
	maxScratch := make([]float64, 3)

	min, max, err := bounds(1, minScratch, maxScratch)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, min)
	require.Equal(t, []float64{4, 5, 6}, max)

	min, max, err = bounds(2, minScratch, maxScratch)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0}, min)
	require.Equal(t, []float64{0, 0, 0}, max)
}

func TestGetMissingItemErrors(t *testing.T) {
	dir := t.TempDir() + "/objstore-missing"
	s, err := Open(dir, 2)
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.get(99)
	require.Error(t, err)
}

func TestPutRejectsDimensionMismatch(t *testing.T) {
	dir := t.TempDir() + "/objstore-mismatch"
	s, err := Open(dir, 2)
	require.NoError(t, err)
	defer s.Close()

	err = s.Put(1, []float64{1, 2, 3}, nil)
	require.ErrorIs(t, err, kdtree.ErrDimensionMismatch)
}

// Bounds() works directly as a kdtree.BoundsFunc in a real build.
func TestBoundsWorksWithKdtreeBuild(t *testing.T) {
	dir := t.TempDir() + "/objstore-build"
	s, err := Open(dir, 2)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(1, []float64{0, 0}, []float64{1, 1}))
	require.NoError(t, s.Put(2, []float64{5, 5}, []float64{6, 6}))

	tr, err := kdtree.Build(s.Bounds(), 2, kdtree.IndexRange{Lo: 1, Hi: 2}, kdtree.Options{})
	require.NoError(t, err)

	it, err := tr.Query([]float64{0.5, 0.5}, []float64{0.5, 0.5})
	require.NoError(t, err)
	ids, err := it.Collect()
	require.NoError(t, err)
	require.Equal(t, []int32{1}, ids)
}
