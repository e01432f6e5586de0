package qfactor

import (
	"context"
	"io"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/G-Research/qfactor/internal/backend/remote"
	"github.com/G-Research/qfactor/internal/backend/simulator"
	"github.com/G-Research/qfactor/internal/circuit"
	"github.com/G-Research/qfactor/internal/common"
	"github.com/G-Research/qfactor/internal/gateway"
	"github.com/G-Research/qfactor/internal/orchestrator"
	"github.com/G-Research/qfactor/internal/qfactor/configuration"
)

// Order search bound used by the simulator when none is configured.
const defaultMaxOrderSearch = 1 << 20

type App struct {
	// Configuration loaded at startup. Must be set before any other method is called.
	Config *configuration.QfactorConfig
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// In is read by the interactive prompt. Defaults to standard in.
	In io.Reader
	// Source of candidate bases. A RandomSampler seeded from the clock is used when nil.
	Sampler orchestrator.BaseSampler
	// Creates the execution backend. Tests can replace it to run against a fake backend.
	NewBackend func(config configuration.BackendConfig) (gateway.Backend, error)

	initOnce sync.Once
	initErr  error
	gateway  *gateway.Gateway
	// Factor pairs found recently, keyed by the decimal form of N
	results *cache.Cache
}

// New instantiates an App with default parameters, reading from standard in and writing to standard out.
func New() *App {
	return &App{
		Out:        os.Stdout,
		In:         os.Stdin,
		NewBackend: NewBackend,
	}
}

// NewBackend creates the backend selected by config.
func NewBackend(config configuration.BackendConfig) (gateway.Backend, error) {
	switch config.Type {
	case configuration.SimulatorBackend:
		maxOrderSearch := config.MaxOrderSearch
		if maxOrderSearch == 0 {
			maxOrderSearch = defaultMaxOrderSearch
		}
		return simulator.New(simulator.Config{
			Seed:           config.Seed,
			FailureRate:    config.FailureRate,
			MaxOrderSearch: maxOrderSearch,
		}), nil
	case configuration.RemoteBackend:
		client, err := remote.NewClient(remote.Config{
			Url:          config.Url,
			Token:        config.Token,
			User:         config.User,
			Device:       config.Name,
			PollInterval: config.PollInterval,
			PollAttempts: config.PollAttempts,
			Timeout:      config.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.Errorf("unknown backend type %q", config.Type)
	}
}

// init creates the parts shared by every factoring run. It is safe to call repeatedly.
func (a *App) init() error {
	a.initOnce.Do(func() {
		if a.Config == nil {
			a.initErr = errors.New("qfactor app has no configuration")
			return
		}
		backend, err := a.NewBackend(a.Config.Backend)
		if err != nil {
			a.initErr = errors.WithMessage(err, "creating execution backend")
			return
		}
		log.Infof("Using %s backend", a.Config.Backend.Type)
		a.gateway = gateway.New(
			backend,
			gateway.RetryPolicy{MaxAttempts: a.Config.Retry.MaxAttempts, BaseDelay: a.Config.Retry.BaseDelay},
			a.Config.MaxParallelJobs,
		)
		if a.Config.ResultCacheTtl > 0 {
			a.results = cache.New(a.Config.ResultCacheTtl, 2*a.Config.ResultCacheTtl)
		}
		if a.Sampler == nil {
			a.Sampler = orchestrator.NewRandomSampler(0)
		}
	})
	return a.initErr
}

// Target validates n against the configured qubit budget.
func (a *App) Target(n *big.Int) (*circuit.Target, error) {
	target, err := circuit.NewTarget(n, a.Config.MaxQubits)
	if err != nil {
		return nil, err
	}
	if target.Truncated() && a.Config.RejectOversizedTargets {
		return nil, errors.Wrapf(
			circuit.ErrQubitBudgetExhausted,
			"%s needs %d qubits, the limit is %d", target, target.RequiredQubits(), a.Config.MaxQubits,
		)
	}
	return target, nil
}

// Factor finds a factor pair of n. Results are served from the result cache when n was factored recently.
func (a *App) Factor(ctx context.Context, n *big.Int) (*orchestrator.Result, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	start := time.Now()
	key := n.String()
	if a.results != nil {
		if cached, ok := a.results.Get(key); ok {
			log.Debugf("Serving factors of %s from cache", key)
			// No rounds ran for this call, only the lookup counts towards its time
			result := *cached.(*orchestrator.Result)
			result.Rounds = 0
			result.Elapsed = time.Since(start)
			return &result, nil
		}
	}

	target, err := a.Target(n)
	if err != nil {
		return nil, err
	}
	builder, err := circuit.NewBuilder(target, a.Config.CircuitCacheSize)
	if err != nil {
		return nil, err
	}
	o := orchestrator.New(
		builder,
		a.gateway,
		a.Sampler,
		orchestrator.Config{
			Shots:          a.Config.Shots,
			BasesPerRound:  a.Config.BasesPerRound,
			NoiseThreshold: a.Config.NoiseThreshold,
		},
		orchestrator.StopPolicy{
			MaxRounds:   a.Config.Limits.MaxRounds,
			MaxDuration: a.Config.Limits.MaxDuration,
		},
	)
	o.OnTransition(func(round int, state orchestrator.State) {
		if state == orchestrator.Retry {
			a.printf("Retrying...\n")
		}
	})

	result, err := o.Run(ctx)
	if err != nil {
		return nil, err
	}
	if a.results != nil {
		a.results.SetDefault(key, result)
	}
	return result, nil
}

// Describe builds the circuit for base b against n without running it.
func (a *App) Describe(n, b *big.Int) (*circuit.Descriptor, error) {
	target, err := a.Target(n)
	if err != nil {
		return nil, err
	}
	if b.Cmp(big.NewInt(1)) <= 0 || b.Cmp(n) >= 0 {
		return nil, errors.Errorf("base must satisfy 1 < a < %s, got %s", n, b)
	}
	builder, err := circuit.NewBuilder(target, 0)
	if err != nil {
		return nil, err
	}
	return builder.Build(b), nil
}

// WithMetrics calls fn while the metrics endpoint is served and stops the endpoint once fn returns. If the
// endpoint fails, the context passed to fn is cancelled.
func (a *App) WithMetrics(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return common.ServeMetrics(ctx, a.Config.MetricsPort)
	})
	g.Go(func() error {
		defer cancel()
		return fn(ctx)
	})
	return g.Wait()
}
