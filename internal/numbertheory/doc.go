// Package numbertheory holds the classical half of Shor's algorithm: modular
// exponentiation over arbitrary-precision integers, gcd based factor tests, and the
// continued-fraction step that turns a measured phase histogram into a period guess.
//
// Everything here is pure. Arguments are never modified and every result is a freshly
// allocated *big.Int, so values can be shared freely between goroutines.
//
// Period extraction:
//
//   - Outcomes whose count is below DefaultNoiseThreshold (2%) of the total shots are
//     discarded as noise.
//   - Each surviving bitstring b of length m is read as the phase value(b) / 2^m.
//   - The phase is replaced by its best rational approximation with denominator at
//     most N (LimitDenominator), and the denominator is the period candidate.
//   - The smallest candidate that is even and strictly between 1 and N wins.
package numbertheory
