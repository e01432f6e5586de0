package configuration

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/qfactor/internal/common/logging"
)

type QfactorConfig struct {
	Logging logging.Config
	// Shots requested for every circuit
	Shots int `validate:"gt=0"`
	// Upper bound on the qubits of a single circuit
	MaxQubits int `validate:"gte=5"`
	// Maximum number of circuits in flight on the backend at once
	MaxParallelJobs int `validate:"gt=0"`
	// Candidate bases drawn per round
	BasesPerRound int `validate:"gt=0"`
	// Outcomes seen in fewer than this fraction of shots are treated as noise
	NoiseThreshold float64 `validate:"gte=0,lt=1"`
	Retry          RetryConfig
	Limits         LimitsConfig
	// Number of power tables kept by the circuit builder. Zero disables the cache.
	CircuitCacheSize int `validate:"gte=0"`
	// How long a factored number is remembered. Zero disables the cache.
	ResultCacheTtl time.Duration
	// If true, numbers needing more than MaxQubits qubits are refused instead of run on truncated circuits
	RejectOversizedTargets bool
	// Port for the prometheus endpoint. Zero disables it.
	MetricsPort uint16
	Backend     BackendConfig
}

type RetryConfig struct {
	// Submissions per circuit, including the first
	MaxAttempts int `validate:"gt=0"`
	// Wait after the first failure. Doubles after each further failure.
	BaseDelay time.Duration
}

// LimitsConfig bounds a factoring run. Zero values mean unbounded.
type LimitsConfig struct {
	MaxRounds   int `validate:"gte=0"`
	MaxDuration time.Duration
}

type BackendType string

const (
	SimulatorBackend BackendType = "simulator"
	RemoteBackend    BackendType = "remote"
)

func (t *BackendType) UnmarshalText(text []byte) error {
	switch value := BackendType(strings.ToLower(strings.TrimSpace(string(text)))); value {
	case SimulatorBackend, RemoteBackend:
		*t = value
		return nil
	default:
		return errors.Errorf("unknown backend type %q; valid types are %s and %s", text, SimulatorBackend, RemoteBackend)
	}
}

type BackendConfig struct {
	Type BackendType `validate:"required"`

	// Simulator settings. A seed of zero seeds from the clock.
	Seed           int64
	FailureRate    float64 `validate:"gte=0,lte=1"`
	MaxOrderSearch int64   `validate:"gte=0"`

	// Remote settings
	Url          string
	Token        string
	User         string
	Name         string
	PollInterval time.Duration
	PollAttempts uint
	Timeout      time.Duration
}
