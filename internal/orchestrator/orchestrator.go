package orchestrator

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/qfactor/internal/circuit"
	"github.com/G-Research/qfactor/internal/numbertheory"
)

// Gateway executes a batch of circuits and returns one histogram per circuit, in order. An empty
// histogram means that circuit could not be run.
type Gateway interface {
	ExecuteBatch(ctx context.Context, descriptors []*circuit.Descriptor, shots int) []circuit.Counts
}

type Config struct {
	// Shots requested for every circuit
	Shots int
	// Number of candidate bases drawn each round
	BasesPerRound int
	// Outcomes seen in fewer than this fraction of shots are ignored during period extraction
	NoiseThreshold float64
}

// Result is a factor pair together with how it was found.
type Result struct {
	Factors numbertheory.Factors
	// The base that produced the factors
	Base *big.Int
	// Period extracted for Base. Nil when the factors came from the classical gcd check.
	Period  *big.Int
	Method  Method
	Rounds  int
	Elapsed time.Duration
}

// Orchestrator runs factoring rounds against a single target until one of them yields a factor pair.
type Orchestrator struct {
	builder    *circuit.Builder
	gateway    Gateway
	sampler    BaseSampler
	config     Config
	stopPolicy StopPolicy
	// Used for elapsed time. Injected here so that we can mock out for testing
	clock clock.Clock
	// Called on every state change, if set
	onTransition func(round int, state State)
}

func New(builder *circuit.Builder, gateway Gateway, sampler BaseSampler, config Config, stopPolicy StopPolicy) *Orchestrator {
	if config.BasesPerRound < 1 {
		config.BasesPerRound = 1
	}
	if target := builder.Target(); target.Truncated() {
		log.Warnf(
			"%s needs %d qubits but only %d are available; circuits will be truncated and may never reveal the period",
			target, target.RequiredQubits(), target.TotalQubits(),
		)
	}
	return &Orchestrator{
		builder:    builder,
		gateway:    gateway,
		sampler:    sampler,
		config:     config,
		stopPolicy: stopPolicy,
		clock:      clock.RealClock{},
	}
}

// OnTransition registers f to be called each time a round changes state.
func (o *Orchestrator) OnTransition(f func(round int, state State)) {
	o.onTransition = f
}

// Run keeps sampling bases until a factor pair is found. Between rounds it stops with ctx.Err() if the
// context is done, or with ErrBudgetExhausted if the stop policy forbids another round. A round that has
// started always runs to completion.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := o.clock.Now()
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if o.stopPolicy.Exhausted(round-1, o.clock.Since(start)) {
			return nil, errors.Wrapf(ErrBudgetExhausted, "no factors of %s after %d rounds", o.builder.Target(), round-1)
		}

		result := o.runRound(ctx, round)
		if result == nil {
			roundsCounter.WithLabelValues("retry").Inc()
			o.transition(round, Retry)
			continue
		}

		roundsCounter.WithLabelValues("success").Inc()
		result.Rounds = round
		result.Elapsed = o.clock.Since(start)
		timeToFactor.Observe(result.Elapsed.Seconds())
		log.Infof("Factored %s as %s in round %d (%s)", o.builder.Target(), result.Factors, round, result.Method)
		return result, nil
	}
}

// runRound returns nil when no base in the round produced factors.
func (o *Orchestrator) runRound(ctx context.Context, round int) *Result {
	n := o.builder.Target().N()
	logger := log.WithField("round", round)

	o.transition(round, Sampling)
	bases := o.sampler.Sample(n, o.config.BasesPerRound)

	o.transition(round, ClassicalCheck)
	for _, a := range bases {
		if divisor, ok := numbertheory.NontrivialGCD(a, n); ok {
			basesCounter.WithLabelValues("classical").Inc()
			logger.Debugf("Base %s shares the factor %s with N", a, divisor)
			o.transition(round, Success)
			return &Result{
				Factors: numbertheory.FactorsFromDivisor(divisor, n),
				Base:    a,
				Method:  MethodClassical,
			}
		}
	}

	o.transition(round, QuantumDispatch)
	descriptors := make([]*circuit.Descriptor, len(bases))
	for i, a := range bases {
		descriptors[i] = o.builder.Build(a)
	}
	histograms := o.gateway.ExecuteBatch(ctx, descriptors, o.config.Shots)

	o.transition(round, PeriodExtraction)
	periods := make([]*big.Int, len(bases))
	for i, counts := range histograms {
		if i >= len(bases) {
			break
		}
		if counts.Empty() {
			basesCounter.WithLabelValues("empty_histogram").Inc()
			logger.Debugf("No histogram for base %s", bases[i])
			continue
		}
		period, ok := numbertheory.ExtractPeriodWithThreshold(counts, n, o.config.NoiseThreshold)
		if !ok {
			basesCounter.WithLabelValues("no_period").Inc()
			logger.Debugf("No usable period for base %s, most frequent outcomes %v", bases[i], counts.MostFrequent(3))
			continue
		}
		periods[i] = period
	}

	o.transition(round, FactorTest)
	for i, period := range periods {
		if period == nil {
			continue
		}
		factors, ok := numbertheory.TestFactorFromPeriod(bases[i], period, n)
		if !ok {
			basesCounter.WithLabelValues("trivial_root").Inc()
			logger.Debugf("Period %s of base %s gives only trivial factors", period, bases[i])
			continue
		}
		basesCounter.WithLabelValues("quantum").Inc()
		o.transition(round, Success)
		return &Result{
			Factors: factors,
			Base:    bases[i],
			Period:  period,
			Method:  MethodQuantum,
		}
	}
	logger.Infof("No factors from %d bases, retrying", len(bases))
	return nil
}

func (o *Orchestrator) transition(round int, state State) {
	log.WithField("round", round).Debugf("Entering %s", state)
	if o.onTransition != nil {
		o.onTransition(round, state)
	}
}
