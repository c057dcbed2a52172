// Command kdbench sweeps k-d tree Build and Query latency across
// dimensionality, leaf size and item count, the way the root main.go
// swept B-tree/B+-tree/LSM degree and threshold configurations, and
// additionally renders the results as a chart (chart.go).
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/btree-query-bench/kdindex/kdtree"
)

func main() {
	var (
		dimsFlag      = flag.String("dims", "2,3,4,5", "comma-separated dimensionalities to sweep")
		leafSizesFlag = flag.String("leaf-sizes", "1,16,100", "comma-separated leaf sizes to sweep")
		itemsFlag     = flag.String("items", "100,1000,10000,100000", "comma-separated item counts to sweep")
		outFlag       = flag.String("out", "kdbench_results.csv", "CSV output path")
		chartFlag     = flag.String("chart", "kdbench_results.png", "chart output path (empty to skip)")
		queriesFlag   = flag.Int("queries", 200, "random queries per configuration")
	)
	flag.Parse()

	dimsList, err := parseInts(*dimsFlag)
	if err != nil {
		log.Fatalf("kdbench: -dims: %v", err)
	}
	leafSizes, err := parseInts(*leafSizesFlag)
	if err != nil {
		log.Fatalf("kdbench: -leaf-sizes: %v", err)
	}
	itemCounts, err := parseInts(*itemsFlag)
	if err != nil {
		log.Fatalf("kdbench: -items: %v", err)
	}

	f, err := os.Create(*outFlag)
	if err != nil {
		log.Fatalf("kdbench: create %s: %v", *outFlag, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Dims", "LeafSize", "ItemCount", "Operation", "LatencyNs", "MemMB", "HeapObjects", "NodeCount", "LeafCount"})

	var points []sweepPoint

	for _, dims := range dimsList {
		for _, leafSize := range leafSizes {
			for _, itemCount := range itemCounts {
				fmt.Printf("dims=%d leaf_size=%d items=%d\n", dims, leafSize, itemCount)

				boxes := generateBoxes(dims, itemCount, int64(dims*1_000_003+leafSize*97+itemCount))
				bounds := boundsFromBoxes(boxes)

				buildStart := time.Now()
				tr, err := kdtree.Build(bounds, dims, kdtree.IndexRange{Lo: 1, Hi: int32(itemCount)}, kdtree.Options{LeafSize: int32(leafSize)})
				buildLatency := time.Since(buildStart).Nanoseconds()
				if err != nil {
					log.Fatalf("kdbench: build dims=%d leaf_size=%d items=%d: %v", dims, leafSize, itemCount, err)
				}

				stats := GetDetailedMem()
				Record(w, BenchResult{
					Dims: dims, LeafSize: int32(leafSize), ItemCount: itemCount,
					Operation: "Build", LatencyNs: buildLatency,
					MemMB: stats.AllocMB, HeapObjects: stats.HeapObjects,
				})

				queryNs, err := runQueries(tr, dims, *queriesFlag, int64(dims*7+leafSize*13))
				if err != nil {
					log.Fatalf("kdbench: query dims=%d leaf_size=%d items=%d: %v", dims, leafSize, itemCount, err)
				}
				perQueryNs := queryNs / int64(*queriesFlag)
				Record(w, BenchResult{
					Dims: dims, LeafSize: int32(leafSize), ItemCount: itemCount,
					Operation: "Query", LatencyNs: perQueryNs,
					MemMB: GetDetailedMem().AllocMB,
				})

				points = append(points, sweepPoint{dims: dims, leafSize: int32(leafSize), itemCount: itemCount, latencyNs: perQueryNs})

				if err := tr.Close(); err != nil {
					log.Fatalf("kdbench: close tree: %v", err)
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("kdbench: write %s: %v", *outFlag, err)
	}

	if *chartFlag != "" {
		if err := renderChart(points, *chartFlag); err != nil {
			log.Fatalf("kdbench: %v", err)
		}
	}

	fmt.Println("kdbench sweep complete.")
}

func parseInts(csvList string) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(csvList, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", tok, err)
		}
		out = append(out, v)
	}
	return out, nil
}
