package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	logMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qfactor_log_messages_total",
		Help: "Total number of log lines logged by level",
	}, []string{"level"})
)

// PrometheusHook implements logrus.Hook and counts log lines per level.
type PrometheusHook struct{}

func (h *PrometheusHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *PrometheusHook) Fire(entry *log.Entry) error {
	logMessages.WithLabelValues(entry.Level.String()).Inc()
	return nil
}
