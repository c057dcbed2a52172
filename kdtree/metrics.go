package kdtree

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const dimsLabel = "dims"

var (
	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kdtree",
		Name:      "build_duration_seconds",
		Help:      "Wall-clock time spent in Build.",
		Buckets:   prometheus.DefBuckets,
	}, []string{dimsLabel})

	arenaNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kdtree",
		Name:      "arena_nodes",
		Help:      "Internal node count of the most recently built tree, by dims.",
	}, []string{dimsLabel})

	arenaLeaves = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kdtree",
		Name:      "arena_leaves",
		Help:      "Leaf count of the most recently built tree, by dims.",
	}, []string{dimsLabel})

	queriesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kdtree",
		Name:      "queries_started_total",
		Help:      "Number of Query calls issued, by dims.",
	}, []string{dimsLabel})

	queryResultsYielded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kdtree",
		Name:      "query_results_yielded_total",
		Help:      "Number of item ids yielded across all queries, by dims.",
	}, []string{dimsLabel})
)

func recordBuild(dims int, nodeCount, leafCount int32, elapsed time.Duration) {
	label := prometheus.Labels{dimsLabel: strconv.Itoa(dims)}
	buildDuration.With(label).Observe(elapsed.Seconds())
	arenaNodes.With(label).Set(float64(nodeCount))
	arenaLeaves.With(label).Set(float64(leafCount))
}

func recordQueryStarted(dims int) {
	queriesStarted.With(prometheus.Labels{dimsLabel: strconv.Itoa(dims)}).Inc()
}

func recordQueryYield(dims int) {
	queryResultsYielded.With(prometheus.Labels{dimsLabel: strconv.Itoa(dims)}).Inc()
}
