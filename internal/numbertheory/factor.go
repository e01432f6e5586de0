package numbertheory

import (
	"fmt"
	"math/big"
)

// Factors is a pair of non-trivial divisors whose product is the factored number.
type Factors struct {
	P *big.Int
	Q *big.Int
}

// Verify reports whether both factors are non-trivial divisors of n with P*Q == n.
func (f Factors) Verify(n *big.Int) bool {
	if f.P == nil || f.Q == nil {
		return false
	}
	if !IsNontrivialDivisor(f.P, n) || !IsNontrivialDivisor(f.Q, n) {
		return false
	}
	return new(big.Int).Mul(f.P, f.Q).Cmp(n) == 0
}

func (f Factors) String() string {
	return fmt.Sprintf("%s x %s", f.P, f.Q)
}

// IsNontrivialDivisor reports whether 1 < f < n. Divisibility is not checked.
func IsNontrivialDivisor(f, n *big.Int) bool {
	return f.Cmp(one) > 0 && f.Cmp(n) < 0
}

// NontrivialGCD returns gcd(a, n) when it lies strictly between 1 and n.
func NontrivialGCD(a, n *big.Int) (*big.Int, bool) {
	g := gcd(a, n)
	if !IsNontrivialDivisor(g, n) {
		return nil, false
	}
	return g, true
}

// FactorsFromDivisor builds the pair (f, n/f).
func FactorsFromDivisor(f, n *big.Int) Factors {
	return Factors{
		P: new(big.Int).Set(f),
		Q: new(big.Int).Quo(n, f),
	}
}

// TestFactorFromPeriod turns an even period r of a modulo n into a factor pair. With
// x = a^(r/2) mod n it tries gcd(x-1, n) and then gcd(x+1, n), returning the first that
// is non-trivial. Odd or non-positive r never yields a factor.
func TestFactorFromPeriod(a, r, n *big.Int) (Factors, bool) {
	if r.Sign() <= 0 || r.Bit(0) == 1 {
		return Factors{}, false
	}
	half := new(big.Int).Rsh(r, 1)
	x := ModExp(a, half, n)
	for _, candidate := range []*big.Int{
		new(big.Int).Sub(x, one),
		new(big.Int).Add(x, one),
	} {
		if f, ok := NontrivialGCD(candidate, n); ok {
			return FactorsFromDivisor(f, n), true
		}
	}
	return Factors{}, false
}

// MultiplicativeOrder finds the smallest r in [1, limit] with a^r == 1 mod n by direct
// search. It reports false when a and n are not coprime or the order exceeds limit.
func MultiplicativeOrder(a, n *big.Int, limit int64) (*big.Int, bool) {
	if n.Cmp(one) <= 0 || gcd(a, n).Cmp(one) != 0 {
		return nil, false
	}
	base := new(big.Int).Mod(a, n)
	x := new(big.Int).Set(base)
	for r := int64(1); r <= limit; r++ {
		if x.Cmp(one) == 0 {
			return big.NewInt(r), true
		}
		x.Mul(x, base).Mod(x, n)
	}
	return nil, false
}

func gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}
