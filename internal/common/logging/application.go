package logging

import (
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

var prometheusHookOnce sync.Once

// ConfigureCommandLineLogging sets up the standard logrus logger for a command writing to out.
// The text format uses CommandLineFormatter so log lines read like program output; json keeps
// the structured formatter for machine consumption.
func ConfigureCommandLineLogging(config Config, out io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}
	level, _ := log.ParseLevel(config.Level)
	log.SetLevel(level)
	log.SetOutput(out)
	if strings.ToLower(config.Format) == FormatJson {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: RFC3339Milli})
	} else {
		log.SetFormatter(&CommandLineFormatter{})
	}
	prometheusHookOnce.Do(func() {
		log.AddHook(&PrometheusHook{})
	})
	return nil
}
