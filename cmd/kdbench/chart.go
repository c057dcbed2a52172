// Renders the sweep as a latency-vs-item-count line chart, one line per
// (dims, leaf_size) pair.
package main

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type sweepPoint struct {
	dims      int
	leafSize  int32
	itemCount int
	latencyNs int64
}

func renderChart(points []sweepPoint, path string) error {
	p := plot.New()
	p.Title.Text = "k-d tree query latency by item count"
	p.X.Label.Text = "item count"
	p.Y.Label.Text = "query latency (ns/op)"

	series := groupByConfig(points)

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pts := series[key]
		sort.Slice(pts, func(i, j int) bool { return pts[i].itemCount < pts[j].itemCount })

		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i].X = float64(pt.itemCount)
			xys[i].Y = float64(pt.latencyNs)
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("kdbench: chart line for %s: %w", key, err)
		}
		p.Add(line)
		p.Legend.Add(key, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("kdbench: save chart %s: %w", path, err)
	}
	return nil
}

func groupByConfig(points []sweepPoint) map[string][]sweepPoint {
	out := make(map[string][]sweepPoint)
	for _, pt := range points {
		key := fmt.Sprintf("dims=%d leaf_size=%d", pt.dims, pt.leafSize)
		out[key] = append(out[key], pt)
	}
	return out
}
