package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricPrefix = "qfactor_orchestrator_"

var roundsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "rounds_total",
		Help: "Factoring rounds completed, by outcome",
	},
	[]string{"outcome"},
)

var basesCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "bases_total",
		Help: "Candidate bases examined, by the stage that decided them",
	},
	[]string{"outcome"},
)

var timeToFactor = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "time_to_factor_seconds",
		Help:    "Wall clock time from the first round to a factor pair",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	},
)
