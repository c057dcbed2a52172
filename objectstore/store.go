// Package objectstore is a caller-side Pebble-backed key→AABB store that
// hands the k-d tree a kdtree.BoundsFunc closure. The tree package itself
// never imports this one.
//
// Keys are big-endian so byte order matches ascending item id for
// non-negative ids, even though objectstore only ever does point lookups,
// not range scans. Values are
// copied out before the Pebble closer that owns their backing buffer runs.
package objectstore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/pebble"

	"github.com/btree-query-bench/kdindex/kdtree"
)

// Store persists (min, max) float64 vectors of a fixed dimensionality,
// keyed by item id.
type Store struct {
	db   *pebble.DB
	dims int
}

// Open opens (or creates) a Pebble database at dir for vectors of the
// given dimensionality.
func Open(dir string, dims int) (*Store, error) {
	if dims < 1 {
		return nil, fmt.Errorf("objectstore: dims must be >= 1, got %d", dims)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("objectstore: open: %w", err)
	}
	return &Store{db: db, dims: dims}, nil
}

// Close cleanly shuts down Pebble, flushing any in-memory state.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the AABB for id, overwriting any previous value. max may be
// nil for a point box (max == min).
func (s *Store) Put(id int32, min, max []float64) error {
	if len(min) != s.dims {
		return fmt.Errorf("%w: min has %d components, want %d", kdtree.ErrDimensionMismatch, len(min), s.dims)
	}
	if max == nil {
		max = min
	}
	if len(max) != s.dims {
		return fmt.Errorf("%w: max has %d components, want %d", kdtree.ErrDimensionMismatch, len(max), s.dims)
	}
	if err := s.db.Set(encodeKey(id), encodeValue(min, max), pebble.NoSync); err != nil {
		return fmt.Errorf("objectstore: put %d: %w", id, err)
	}
	return nil
}

// Delete removes id's stored AABB, if any.
func (s *Store) Delete(id int32) error {
	if err := s.db.Delete(encodeKey(id), pebble.NoSync); err != nil {
		return fmt.Errorf("objectstore: delete %d: %w", id, err)
	}
	return nil
}

// get retrieves id's stored (min, max), copying out of Pebble's
// closer-scoped buffer before returning.
func (s *Store) get(id int32) (min, max []float64, err error) {
	val, closer, err := s.db.Get(encodeKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil, fmt.Errorf("objectstore: item %d not found", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("objectstore: get %d: %w", id, err)
	}
	min, max, decodeErr := decodeValue(val, s.dims)
	closer.Close()
	if decodeErr != nil {
		return nil, nil, fmt.Errorf("objectstore: get %d: %w", id, decodeErr)
	}
	return min, max, nil
}

// Bounds returns a kdtree.BoundsFunc backed by this store, suitable for
// kdtree.Build/ReadText/ReadBinary.
func (s *Store) Bounds() kdtree.BoundsFunc {
	return func(item int32, minScratch, maxScratch []float64) ([]float64, []float64, error) {
		min, max, err := s.get(item)
		if err != nil {
			return nil, nil, err
		}
		copy(minScratch, min)
		copy(maxScratch, max)
		return minScratch[:s.dims], maxScratch[:s.dims], nil
	}
}

// encodeKey encodes an item id as a big-endian 4-byte slice, matching the
// sort-preserving convention dbms/index/lsm uses for int64 keys.
func encodeKey(id int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(id))
	return b
}

// encodeValue packs min then max as big-endian float64 bit patterns.
func encodeValue(min, max []float64) []byte {
	dims := len(min)
	buf := make([]byte, 16*dims)
	for i, v := range min {
		binary.BigEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	off := 8 * dims
	for i, v := range max {
		binary.BigEndian.PutUint64(buf[off+i*8:off+i*8+8], math.Float64bits(v))
	}
	return buf
}

func decodeValue(buf []byte, dims int) (min, max []float64, err error) {
	if len(buf) != 16*dims {
		return nil, nil, fmt.Errorf("value has %d bytes, want %d", len(buf), 16*dims)
	}
	min = make([]float64, dims)
	max = make([]float64, dims)
	for i := 0; i < dims; i++ {
		min[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8 : i*8+8]))
	}
	off := 8 * dims
	for i := 0; i < dims; i++ {
		max[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[off+i*8 : off+i*8+8]))
	}
	return min, max, nil
}
