// Binary persistence: three flat, memory-mappable record arrays in a
// directory — nodes, leaves, items — using the exact layouts documented
// in node.go. The root reference is reconstructed as node_count-1 (the
// last node written is the root because emission during Build is
// post-order: every child is pushed before its parent).
package kdtree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btree-query-bench/kdindex/kdtree/pagestore"
)

const (
	nodesFileName  = "nodes"
	leavesFileName = "leaves"
	itemsFileName  = "items"
)

// WriteBinary serializes t's structural tree into dir as three flat record
// files, one per arena store. dir is created if it does not exist.
func WriteBinary(t *Tree, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrIO, dir, err)
	}
	if err := writeBinaryFile(filepath.Join(dir, nodesFileName), t.nodes); err != nil {
		return err
	}
	if err := writeBinaryFile(filepath.Join(dir, leavesFileName), t.leaves); err != nil {
		return err
	}
	return writeBinaryFile(filepath.Join(dir, itemsFileName), t.items)
}

func writeBinaryFile(path string, src recordSource) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n := src.Count()
	for id := int32(0); id < n; id++ {
		rec, err := src.Read(id)
		if err != nil {
			return fmt.Errorf("%w: read record %d of %s: %v", ErrIO, id, path, err)
		}
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrIO, path, err)
	}
	return nil
}

// ReadBinary memory-maps the three record files in dir and wraps them as a
// query-only Tree. The caller must Close the returned Tree to unmap them.
// bounds and dims must match the tree that produced dir; items is accepted
// for symmetry with Build but is not needed to reconstruct the structural
// tree.
func ReadBinary(dir string, bounds BoundsFunc, dims int, items Items) (*Tree, error) {
	nodes, err := pagestore.OpenMmap(filepath.Join(dir, nodesFileName), nodeRecordSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	leaves, err := pagestore.OpenMmap(filepath.Join(dir, leavesFileName), leafRecordSize)
	if err != nil {
		nodes.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	itemsStore, err := pagestore.OpenMmap(filepath.Join(dir, itemsFileName), itemRecordSize)
	if err != nil {
		nodes.Close()
		leaves.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return &Tree{
		dims:    dims,
		bounds:  bounds,
		nodes:   nodes,
		leaves:  leaves,
		items:   itemsStore,
		root:    nodes.Count() - 1,
		closers: []io.Closer{nodes, leaves, itemsStore},
	}, nil
}
