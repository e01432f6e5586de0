package numbertheory

import "errors"

var (
	// ErrNonPositiveModulus indicates a modular operation was asked to reduce by m <= 0.
	ErrNonPositiveModulus = errors.New("numbertheory: modulus must be positive")
	// ErrNegativeExponent indicates ModExp was called with a negative exponent.
	ErrNegativeExponent = errors.New("numbertheory: exponent must be non-negative")
	// ErrNonPositiveDenominatorBound indicates LimitDenominator was called with a bound below 1.
	ErrNonPositiveDenominatorBound = errors.New("numbertheory: denominator bound must be at least 1")
)
