// Package simulator provides an in-process execution backend that reproduces the measurement statistics of an ideal
// period-finding circuit. It does not evolve a quantum state: the order of the base is found classically and the
// phase register outcomes are sampled from it, which makes it suitable for tests and demonstrations on small N.
package simulator

import (
	"context"
	"math/big"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/qfactor/internal/circuit"
	"github.com/G-Research/qfactor/internal/common/util"
	"github.com/G-Research/qfactor/internal/numbertheory"
)

var ErrInjectedFailure = errors.New("simulator: injected transient failure")

type Config struct {
	// Seed for the sampler. Zero seeds from the clock.
	Seed int64
	// Probability that a run fails with ErrInjectedFailure
	FailureRate float64
	// Upper bound on the brute force order search. Bases whose order exceeds it produce uniform noise.
	MaxOrderSearch int64
}

type Backend struct {
	rand           *rand.Rand
	failureRate    float64
	maxOrderSearch int64
}

func New(config Config) *Backend {
	return &Backend{
		rand:           util.NewThreadsafeRand(config.Seed),
		failureRate:    config.FailureRate,
		maxOrderSearch: config.MaxOrderSearch,
	}
}

// Run samples shots outcomes of the control register. For a base of order r every shot picks s uniformly from
// [0, r) and records round(s * 2^m / r) mod 2^m as an m-bit string, where m is the control register width.
// Truncated circuits and bases whose order cannot be found yield uniformly distributed outcomes.
func (b *Backend) Run(ctx context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if shots <= 0 {
		return nil, errors.Errorf("simulator: shots must be positive, got %d", shots)
	}
	if b.failureRate > 0 && b.rand.Float64() < b.failureRate {
		return nil, errors.WithStack(ErrInjectedFailure)
	}
	n, err := descriptor.ModulusInt()
	if err != nil {
		return nil, err
	}
	a, err := descriptor.BaseInt()
	if err != nil {
		return nil, err
	}
	width := descriptor.Layout.Control
	if width <= 0 {
		return nil, errors.Errorf("simulator: circuit %s has no control register", descriptor.Name)
	}

	if descriptor.Truncated {
		return b.uniform(width, shots), nil
	}
	order, ok := numbertheory.MultiplicativeOrder(a, n, b.maxOrderSearch)
	if !ok {
		log.WithField("circuit", descriptor.Name).Debugf("No order found within %d steps, returning noise", b.maxOrderSearch)
		return b.uniform(width, shots), nil
	}
	return b.phases(order.Int64(), width, shots), nil
}

func (b *Backend) phases(order int64, width, shots int) circuit.Counts {
	hits := make(map[int64]int64)
	for i := 0; i < shots; i++ {
		hits[b.rand.Int63n(order)]++
	}

	scale := new(big.Int).Lsh(big.NewInt(1), uint(width))
	r := big.NewInt(order)
	halfR := big.NewInt(order / 2)
	counts := make(circuit.Counts, len(hits))
	for s, count := range hits {
		bin := new(big.Int).Mul(big.NewInt(s), scale)
		bin.Add(bin, halfR).Quo(bin, r).Mod(bin, scale)
		counts[bitstring(bin, width)] += count
	}
	return counts
}

func (b *Backend) uniform(width, shots int) circuit.Counts {
	scale := new(big.Int).Lsh(big.NewInt(1), uint(width))
	counts := make(circuit.Counts)
	for i := 0; i < shots; i++ {
		counts[bitstring(new(big.Int).Rand(b.rand, scale), width)]++
	}
	return counts
}

func bitstring(value *big.Int, width int) string {
	bits := value.Text(2)
	if len(bits) >= width {
		return bits
	}
	return strings.Repeat("0", width-len(bits)) + bits
}
