package logging

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJson = "json"
)

// Config defines console logging configuration.
type Config struct {
	// Log level, e.g. info, error etc
	Level string
	// Logging format, either text or json
	Format string
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText}
}

// Validate checks that the level parses and the format is known.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return errors.WithStack(err)
	}
	switch strings.ToLower(c.Format) {
	case FormatText, FormatJson:
		return nil
	default:
		return errors.Errorf("unknown log format: %s.  Valid formats are %s and %s", c.Format, FormatText, FormatJson)
	}
}
