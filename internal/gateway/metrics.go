package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricPrefix = "qfactor_gateway_"

var attemptsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "attempts_total",
		Help: "Circuit submissions made to the execution backend, by outcome",
	},
	[]string{"outcome"},
)

var exhaustedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "exhausted_total",
		Help: "Circuits that returned an empty histogram after all retries failed",
	},
)

var submissionLatency = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "submission_latency_seconds",
		Help:    "Latency of a single circuit submission in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	},
)
