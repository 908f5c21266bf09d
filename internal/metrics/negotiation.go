// SPDX-License-Identifier: MIT

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// negotiationRunsTotal tracks completed negotiation runs by result.
	negotiationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avgraph_negotiation_runs_total",
		Help: "Total number of negotiation runs by result",
	}, []string{"result"})

	// negotiationPasses tracks how many merge passes a run needed to settle.
	negotiationPasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "avgraph_negotiation_passes",
		Help:    "Merge passes needed until the graph settled",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
	})

	// negotiationDuration tracks wall time per negotiation run.
	negotiationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "avgraph_negotiation_duration_seconds",
		Help:    "Wall time per negotiation run",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// mergeTotal tracks individual candidate-set merges by kind and outcome.
	mergeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avgraph_merge_total",
		Help: "Total number of candidate set merges by kind and outcome",
	}, []string{"kind", "outcome"})
)

// IncNegotiationRun records one completed negotiation run.
func IncNegotiationRun(result string) {
	negotiationRunsTotal.WithLabelValues(normalizeResultLabel(result)).Inc()
}

// ObserveNegotiationPasses records how many passes a run took.
func ObserveNegotiationPasses(passes int) {
	negotiationPasses.Observe(float64(passes))
}

// ObserveNegotiationDuration records the wall time of a run.
func ObserveNegotiationDuration(d time.Duration) {
	negotiationDuration.Observe(d.Seconds())
}

// IncMerge records one candidate set merge attempt.
func IncMerge(kind, outcome string) {
	mergeTotal.WithLabelValues(normalizeKindLabel(kind), normalizeOutcomeLabel(outcome)).Inc()
}

func normalizeResultLabel(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "ok", "incompatible", "invalid", "unresolved", "error":
		return strings.ToLower(strings.TrimSpace(result))
	default:
		return "unknown"
	}
}

func normalizeKindLabel(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "formats", "sample_rates", "channel_layouts":
		return strings.ToLower(strings.TrimSpace(kind))
	default:
		return "unknown"
	}
}

func normalizeOutcomeLabel(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "merged", "noop", "incompatible":
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "unknown"
	}
}
