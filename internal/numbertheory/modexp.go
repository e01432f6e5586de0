package numbertheory

import "math/big"

var one = big.NewInt(1)

// ModExp returns base^exponent mod modulus, computed by binary square-and-multiply in
// O(log exponent) modular multiplications. It panics with ErrNonPositiveModulus or
// ErrNegativeExponent on invalid input.
func ModExp(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Sign() <= 0 {
		panic(ErrNonPositiveModulus)
	}
	if exponent.Sign() < 0 {
		panic(ErrNegativeExponent)
	}

	result := new(big.Int).Mod(one, modulus)
	square := new(big.Int).Mod(base, modulus)
	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, square).Mod(result, modulus)
		}
		square.Mul(square, square).Mod(square, modulus)
	}
	return result
}

// PowerTable returns count values where entry i is a^(2^i) mod n. Each entry is the
// square of the previous one, so the whole table costs count modular multiplications.
func PowerTable(a, n *big.Int, count int) []*big.Int {
	if n.Sign() <= 0 {
		panic(ErrNonPositiveModulus)
	}
	table := make([]*big.Int, count)
	current := new(big.Int).Mod(a, n)
	for i := 0; i < count; i++ {
		table[i] = new(big.Int).Set(current)
		current.Mul(current, current).Mod(current, n)
	}
	return table
}
