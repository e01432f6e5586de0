package numbertheory

import (
	"math/big"
	"strings"
)

// DefaultNoiseThreshold is the fraction of total shots an outcome needs to be considered
// signal rather than noise.
const DefaultNoiseThreshold = 0.02

// ExtractPeriod returns the smallest usable period candidate encoded in counts, using
// DefaultNoiseThreshold.
func ExtractPeriod(counts map[string]int64, n *big.Int) (*big.Int, bool) {
	return ExtractPeriodWithThreshold(counts, n, DefaultNoiseThreshold)
}

// ExtractPeriodWithThreshold is ExtractPeriod with an explicit noise threshold. Outcomes
// are kept when count >= threshold * total. Keys that are not binary strings are
// ignored; spaces inside keys are treated as register separators and dropped.
func ExtractPeriodWithThreshold(counts map[string]int64, n *big.Int, threshold float64) (*big.Int, bool) {
	var total int64
	for _, count := range counts {
		total += count
	}
	if total <= 0 {
		return nil, false
	}

	cutoff := threshold * float64(total)
	var best *big.Int
	for bitstring, count := range counts {
		if float64(count) < cutoff {
			continue
		}
		phase, ok := ParsePhase(bitstring)
		if !ok {
			continue
		}
		r := LimitDenominator(phase, n).Denom()
		if !IsUsablePeriod(r, n) {
			continue
		}
		if best == nil || r.Cmp(best) < 0 {
			best = new(big.Int).Set(r)
		}
	}
	return best, best != nil
}

// IsUsablePeriod reports whether r is even and 1 < r < n.
func IsUsablePeriod(r, n *big.Int) bool {
	return r.Bit(0) == 0 && r.Cmp(one) > 0 && r.Cmp(n) < 0
}

// ParsePhase reads a measured bitstring b of length m as the binary fraction
// value(b) / 2^m.
func ParsePhase(bitstring string) (*big.Rat, bool) {
	bits := strings.ReplaceAll(bitstring, " ", "")
	if bits == "" || strings.IndexFunc(bits, notBinaryDigit) >= 0 {
		return nil, false
	}
	value, ok := new(big.Int).SetString(bits, 2)
	if !ok {
		return nil, false
	}
	scale := new(big.Int).Lsh(one, uint(len(bits)))
	return new(big.Rat).SetFrac(value, scale), true
}

func notBinaryDigit(r rune) bool {
	return r != '0' && r != '1'
}

// LimitDenominator returns the closest rational to x whose denominator is at most
// maxDenominator. It walks the continued-fraction convergents of x and, once the next
// convergent would exceed the bound, picks whichever of the last convergent and the best
// semiconvergent is closer to x, preferring the convergent on a tie.
func LimitDenominator(x *big.Rat, maxDenominator *big.Int) *big.Rat {
	if maxDenominator.Cmp(one) < 0 {
		panic(ErrNonPositiveDenominatorBound)
	}
	if x.Denom().Cmp(maxDenominator) <= 0 {
		return new(big.Rat).Set(x)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(x.Num())
	d := new(big.Int).Set(x.Denom())
	a := new(big.Int)
	for {
		a.Div(n, d)
		q2 := new(big.Int).Mul(a, q1)
		q2.Add(q2, q0)
		if q2.Cmp(maxDenominator) > 0 {
			break
		}
		p2 := new(big.Int).Mul(a, p1)
		p2.Add(p2, p0)
		p0, q0, p1, q1 = p1, q1, p2, q2

		remainder := new(big.Int).Mul(a, d)
		remainder.Sub(n, remainder)
		n, d = d, remainder
	}

	k := new(big.Int).Sub(maxDenominator, q0)
	k.Div(k, q1)
	semiNum := new(big.Int).Mul(k, p1)
	semiNum.Add(semiNum, p0)
	semiDen := new(big.Int).Mul(k, q1)
	semiDen.Add(semiDen, q0)

	semiconvergent := new(big.Rat).SetFrac(semiNum, semiDen)
	convergent := new(big.Rat).SetFrac(p1, q1)
	if distance(convergent, x).Cmp(distance(semiconvergent, x)) <= 0 {
		return convergent
	}
	return semiconvergent
}

func distance(a, b *big.Rat) *big.Rat {
	d := new(big.Rat).Sub(a, b)
	return d.Abs(d)
}
