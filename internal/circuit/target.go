package circuit

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// AncillaQubits is the number of scratch qubits used by the oracle.
	AncillaQubits = 2
	// MinQubits is the smallest budget that still fits one target qubit.
	MinQubits = 3*1 + AncillaQubits
)

var (
	ErrTargetTooSmall       = errors.New("circuit: number to factor must be at least 4")
	ErrQubitBudgetTooSmall  = errors.New("circuit: qubit budget must be at least 5")
	ErrQubitBudgetExhausted = errors.New("circuit: number to factor needs more qubits than the budget allows")
	minTarget               = big.NewInt(4)
)

// Target is the number being factored together with the register sizing derived from it.
// It is immutable once created.
type Target struct {
	n         *big.Int
	bitLength int
	maxQubits int
}

// NewTarget validates n >= 4 and records the qubit budget. Primality of n is not checked.
func NewTarget(n *big.Int, maxQubits int) (*Target, error) {
	if n == nil || n.Cmp(minTarget) < 0 {
		return nil, errors.WithStack(ErrTargetTooSmall)
	}
	if maxQubits < MinQubits {
		return nil, errors.WithStack(ErrQubitBudgetTooSmall)
	}
	return &Target{
		n:         new(big.Int).Set(n),
		bitLength: n.BitLen(),
		maxQubits: maxQubits,
	}, nil
}

// N returns a copy of the number being factored.
func (t *Target) N() *big.Int {
	return new(big.Int).Set(t.n)
}

// BitLength is ceil(log2(N+1)).
func (t *Target) BitLength() int {
	return t.bitLength
}

// RequiredQubits is the qubit count of an untruncated circuit, 3n+2.
func (t *Target) RequiredQubits() int {
	return 3*t.bitLength + AncillaQubits
}

// TotalQubits is min(MaxQubits, 3n+2).
func (t *Target) TotalQubits() int {
	if required := t.RequiredQubits(); required < t.maxQubits {
		return required
	}
	return t.maxQubits
}

// Truncated reports whether the register widths had to be cut to fit the qubit budget.
// Circuits for a truncated target encode only the low bits of the oracle values and are
// not expected to reveal the period.
func (t *Target) Truncated() bool {
	return t.RequiredQubits() > t.maxQubits
}

// Layout returns the register widths used by every circuit for this target.
func (t *Target) Layout() Layout {
	width := t.bitLength
	if t.Truncated() {
		width = (t.maxQubits - AncillaQubits) / 3
	}
	return Layout{
		Control:   2 * width,
		Target:    width,
		Ancilla:   AncillaQubits,
		Classical: 2 * width,
	}
}

func (t *Target) String() string {
	return fmt.Sprintf("%s (%d bits)", t.n, t.bitLength)
}

// Layout describes the registers of a period-finding circuit.
type Layout struct {
	Control   int `json:"control"`
	Target    int `json:"target"`
	Ancilla   int `json:"ancilla"`
	Classical int `json:"classical"`
}

// Qubits is the total number of quantum bits in the layout.
func (l Layout) Qubits() int {
	return l.Control + l.Target + l.Ancilla
}
