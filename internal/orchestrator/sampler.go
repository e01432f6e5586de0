package orchestrator

import (
	"math/big"
	"math/rand"

	"github.com/G-Research/qfactor/internal/common/util"
)

// Candidate bases are never drawn above this value, whatever the size of N.
const maxBase = int64(1) << 32

type BaseSampler interface {
	// Sample returns count bases a with 2 <= a < min(n, 2^32). n must be at least 4.
	Sample(n *big.Int, count int) []*big.Int
}

// RandomSampler draws bases uniformly. It is safe for concurrent use.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler returns a sampler seeded with seed, or from the current time when seed is zero.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{random: util.NewThreadsafeRand(seed)}
}

func (s *RandomSampler) Sample(n *big.Int, count int) []*big.Int {
	upper := maxBase
	if n.IsInt64() && n.Int64() < upper {
		upper = n.Int64()
	}
	bases := make([]*big.Int, count)
	for i := range bases {
		bases[i] = big.NewInt(2 + s.random.Int63n(upper-2))
	}
	return bases
}
