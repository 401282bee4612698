package builder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeFeasible   = "feasible"
	outcomeInfeasible = "infeasible"
	outcomeInvalid    = "invalid"
)

var (
	// solveOutcomes counts solves by goal and outcome.
	solveOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "water_builder",
		Subsystem: "solver",
		Name:      "solves_total",
		Help:      "Total solves by goal and outcome",
	}, []string{"goal", "outcome"})

	// solveDuration measures validated solves.
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "water_builder",
		Subsystem: "solver",
		Name:      "solve_duration_seconds",
		Help:      "Solve latency in seconds",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"goal"})

	// bestFitDuration measures whole best fit searches.
	bestFitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "water_builder",
		Subsystem: "bestfit",
		Name:      "duration_seconds",
		Help:      "Best fit search latency in seconds",
		Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})

	// bestFitSearches counts best fit searches by whether a candidate was found.
	bestFitSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "water_builder",
		Subsystem: "bestfit",
		Name:      "searches_total",
		Help:      "Total best fit searches by outcome",
	}, []string{"outcome"})
)
