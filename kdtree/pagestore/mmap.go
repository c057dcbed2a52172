package pagestore

import (
	"fmt"

	"golang.org/x/exp/mmap"
)

// MmapStore is a read-only, memory-mapped view over a fixed-record file.
// It backs the query-only reload path of the binary persistence format:
// no LRU cache is needed because the OS page cache already does that job
// once the file is mapped.
type MmapStore struct {
	r          *mmap.ReaderAt
	recordSize int
	count      int32
}

// OpenMmap memory-maps path read-only and exposes it as fixed-size records.
func OpenMmap(path string, recordSize int) (*MmapStore, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pagestore: mmap open %s: %w", path, err)
	}
	if recordSize <= 0 {
		r.Close()
		return nil, fmt.Errorf("pagestore: invalid record size %d", recordSize)
	}
	if r.Len()%recordSize != 0 {
		r.Close()
		return nil, fmt.Errorf("pagestore: %s size %d is not a multiple of record size %d", path, r.Len(), recordSize)
	}
	return &MmapStore{r: r, recordSize: recordSize, count: int32(r.Len() / recordSize)}, nil
}

// Count returns the number of records in the mapped file.
func (m *MmapStore) Count() int32 { return m.count }

// Read returns a copy of record id. The mmap.ReaderAt interface copies into
// the caller's buffer via ReadAt; the zero-copy win over a plain file is
// that the kernel serves it straight from the page cache without a syscall
// round trip once mapped.
func (m *MmapStore) Read(id int32) ([]byte, error) {
	if id < 0 || id >= m.count {
		return nil, fmt.Errorf("pagestore: record %d out of range (count %d)", id, m.count)
	}
	buf := make([]byte, m.recordSize)
	if _, err := m.r.ReadAt(buf, int64(id)*int64(m.recordSize)); err != nil {
		return nil, fmt.Errorf("pagestore: mmap read record %d: %w", id, err)
	}
	return buf, nil
}

// Close unmaps the file.
func (m *MmapStore) Close() error { return m.r.Close() }
