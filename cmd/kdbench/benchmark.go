// Grounded on the root benchmark.go/workload.go pair: a CSV-writing sweep
// harness plus a runtime.MemStats-based memory sampler, retargeted from the
// B-tree/B+-tree/LSM insert-heavy workloads at the repo root onto the
// k-d tree's build-once/query-many shape.
package main

import (
	"encoding/csv"
	"runtime"
	"strconv"
)

// BenchResult is one sweep configuration's recorded outcome.
type BenchResult struct {
	Dims        int
	LeafSize    int32
	ItemCount   int
	Operation   string
	LatencyNs   int64
	MemMB       uint64
	HeapObjects uint64
	NodeCount   int32
	LeafCount   int32
}

type MemoryStats struct {
	AllocMB     uint64
	HeapObjects uint64
}

// GetDetailedMem forces a GC so the sample reflects live data, not
// garbage, the same discipline the root benchmark.go uses.
func GetDetailedMem() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:     m.Alloc / 1024 / 1024,
		HeapObjects: m.HeapObjects,
	}
}

func Record(w *csv.Writer, res BenchResult) {
	w.Write([]string{
		strconv.Itoa(res.Dims),
		strconv.Itoa(int(res.LeafSize)),
		strconv.Itoa(res.ItemCount),
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.MemMB, 10),
		strconv.FormatUint(res.HeapObjects, 10),
		strconv.Itoa(int(res.NodeCount)),
		strconv.Itoa(int(res.LeafCount)),
	})
}
