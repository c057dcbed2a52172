// Text persistence: a line-based, whitespace-tokenized pre-order encoding
// of the arena. Floats use strconv's shortest round-trippable decimal form
// (FormatFloat 'g', -1, 64) rather than the host's default formatting, so
// two writes of the same tree always produce byte-identical files.
package kdtree

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WriteText serializes t's structural tree (nodes, leaves, item ids) to
// path. The caller's objects and bounds callback are not persisted.
func WriteText(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\t%d\t%d\n", t.nodes.Count(), t.leaves.Count(), t.items.Count())
	if err := writeTextBody(w, t, t.root); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrIO, path, err)
	}
	return nil
}

func writeTextBody(w *bufio.Writer, t *Tree, ref int32) error {
	isLeaf, idx := decodeRef(ref)
	if isLeaf {
		leaf, err := readLeaf(t.leaves, idx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		count := leaf.lastItem - leaf.firstItem + 1
		if count < 0 {
			count = 0
		}
		fmt.Fprintf(w, "L\t%d\n", count)
		for pos := leaf.firstItem; pos <= leaf.lastItem; pos++ {
			id, err := readItem(t.items, pos)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrIO, err)
			}
			fmt.Fprintf(w, "%d\n", id)
		}
		return nil
	}

	node, err := readNode(t.nodes, idx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	fmt.Fprintf(w, "N\t%d\t%s\n", node.axis, strconv.FormatFloat(node.split, 'g', -1, 64))
	if err := writeTextBody(w, t, node.low); err != nil {
		return err
	}
	if err := writeTextBody(w, t, node.high); err != nil {
		return err
	}
	return writeTextBody(w, t, node.mid)
}

// ReadText reconstructs a Tree from a file written by WriteText. bounds and
// dims must match the original build; items is accepted for symmetry with
// Build's two construction modes but is not required to reconstruct the
// structural tree, since item ids are stored directly in the file.
func ReadText(path string, bounds BoundsFunc, dims int, items Items) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: %s: missing header line", ErrParse, path)
	}
	header := strings.Fields(sc.Text())
	if len(header) != 3 {
		return nil, fmt.Errorf("%w: %s: header has %d fields, want 3", ErrParse, path, len(header))
	}
	nodeCount, err1 := strconv.ParseInt(header[0], 10, 32)
	leafCount, err2 := strconv.ParseInt(header[1], 10, 32)
	itemCount, err3 := strconv.ParseInt(header[2], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("%w: %s: non-numeric header token", ErrParse, path)
	}

	a := newReloadArena(dims, int32(nodeCount), int32(leafCount))
	root, err := parseTextBody(sc, a)
	if err != nil {
		return nil, asParseError(path, err)
	}
	if a.nodes.Count() != int32(nodeCount) || a.leaves.Count() != int32(leafCount) || a.items.Count() != int32(itemCount) {
		return nil, fmt.Errorf("%w: %s: header counts (%d,%d,%d) disagree with body (%d,%d,%d)",
			ErrParse, path, nodeCount, leafCount, itemCount, a.nodes.Count(), a.leaves.Count(), a.items.Count())
	}

	return &Tree{
		dims:   dims,
		bounds: bounds,
		nodes:  a.nodes,
		leaves: a.leaves,
		items:  a.items,
		root:   root,
	}, nil
}

func parseTextBody(sc *bufio.Scanner, a *arena) (int32, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("%w: unexpected end of file", ErrParse)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty record line", ErrParse)
	}

	switch fields[0] {
	case "N":
		if len(fields) != 3 {
			return 0, fmt.Errorf("%w: node line has %d fields, want 3", ErrParse, len(fields))
		}
		axis, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: non-numeric axis %q", ErrParse, fields[1])
		}
		split, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: non-numeric split %q", ErrParse, fields[2])
		}
		low, err := parseTextBody(sc, a)
		if err != nil {
			return 0, err
		}
		high, err := parseTextBody(sc, a)
		if err != nil {
			return 0, err
		}
		mid, err := parseTextBody(sc, a)
		if err != nil {
			return 0, err
		}
		return a.pushNode(int32(axis), split, low, mid, high)

	case "L":
		if len(fields) != 2 {
			return 0, fmt.Errorf("%w: leaf line has %d fields, want 2", ErrParse, len(fields))
		}
		count, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil || count < 0 {
			return 0, fmt.Errorf("%w: bad leaf item count %q", ErrParse, fields[1])
		}
		ids := make([]int32, count)
		for i := range ids {
			if !sc.Scan() {
				return 0, fmt.Errorf("%w: unexpected end of file in leaf item list", ErrParse)
			}
			id, err := strconv.ParseInt(strings.TrimSpace(sc.Text()), 10, 32)
			if err != nil {
				return 0, fmt.Errorf("%w: non-numeric item id %q", ErrParse, sc.Text())
			}
			ids[i] = int32(id)
		}
		ref, base, err := a.pushLeaf(int32(count))
		if err != nil {
			return 0, err
		}
		for i, id := range ids {
			if err := a.setItem(base+int32(i), id); err != nil {
				return 0, err
			}
		}
		return ref, nil

	default:
		return 0, fmt.Errorf("%w: unknown record header %q", ErrParse, fields[0])
	}
}

// asParseError recategorizes a capacity overrun hit while replaying a file
// against its own (too-small) header counts as a parse error: during
// reload this always means the body disagrees with its header, never a
// genuine build-time capacity limit.
func asParseError(path string, err error) error {
	if errors.Is(err, ErrCapacityExceeded) {
		return fmt.Errorf("%w: %s: body exceeds header counts: %v", ErrParse, path, err)
	}
	return err
}
