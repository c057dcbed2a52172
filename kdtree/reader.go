package kdtree

import "fmt"

// recordSource is the minimal read shape every record backing — an
// in-memory pagestore.Store, a file-backed pagestore.Store, or a
// pagestore.MmapStore — satisfies. A Tree never cares which one it holds.
type recordSource interface {
	Read(id int32) ([]byte, error)
	Count() int32
}

func readNode(src recordSource, id int32) (nodeRecord, error) {
	rec, err := src.Read(id)
	if err != nil {
		return nodeRecord{}, fmt.Errorf("kdtree: read node %d: %w", id, err)
	}
	return decodeNode(rec), nil
}

func readLeaf(src recordSource, id int32) (leafRecord, error) {
	rec, err := src.Read(id)
	if err != nil {
		return leafRecord{}, fmt.Errorf("kdtree: read leaf %d: %w", id, err)
	}
	return decodeLeaf(rec), nil
}

func readItem(src recordSource, pos int32) (int32, error) {
	rec, err := src.Read(pos)
	if err != nil {
		return 0, fmt.Errorf("kdtree: read item %d: %w", pos, err)
	}
	return decodeItem(rec), nil
}
