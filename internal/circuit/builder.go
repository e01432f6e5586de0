package circuit

import (
	"fmt"
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/G-Research/qfactor/internal/numbertheory"
)

// Builder turns candidate bases into period-finding circuits for one Target.
//
// The modular-exponentiation oracle is an approximation: rather than synthesising
// reversible arithmetic, each control qubit i flips the target bits that are set in the
// classically precomputed value a^(2^i) mod N, routed through ancilla[0].
type Builder struct {
	target *Target
	layout Layout
	// Optional cache of power tables keyed by the decimal base. Nil when disabled.
	tables *lru.Cache
}

// NewBuilder returns a Builder for target. When cacheSize is positive the power tables of
// the most recently used bases are kept so resampled bases skip the precomputation.
func NewBuilder(target *Target, cacheSize int) (*Builder, error) {
	builder := &Builder{
		target: target,
		layout: target.Layout(),
	}
	if cacheSize > 0 {
		tables, err := lru.New(cacheSize)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		builder.tables = tables
	}
	return builder, nil
}

func (b *Builder) Target() *Target {
	return b.target
}

// Build produces the descriptor for base a. It is deterministic and performs no I/O.
func (b *Builder) Build(a *big.Int) *Descriptor {
	layout := b.layout
	gates := make([]Gate, 0, layout.Control*(3+layout.Target)+1)

	for i := 0; i < layout.Control; i++ {
		gates = append(gates, Gate{Op: OpH, Qubits: []Qubit{control(i)}})
	}

	ancilla := Qubit{Register: AncillaRegister, Index: 0}
	for i, value := range b.powerTable(a) {
		gates = append(gates, Gate{Op: OpCX, Qubits: []Qubit{control(i), ancilla}})
		for j := 0; j < layout.Target; j++ {
			if value.Bit(j) == 1 {
				gates = append(gates, Gate{
					Op:     OpCCX,
					Qubits: []Qubit{ancilla, control(i), {Register: TargetRegister, Index: j}},
				})
			}
		}
		gates = append(gates, Gate{Op: OpCX, Qubits: []Qubit{control(i), ancilla}})
	}

	measured := make([]Qubit, layout.Control)
	clbits := make([]int, layout.Control)
	for k := 0; k < layout.Control; k++ {
		measured[k] = control(k)
		clbits[k] = k
	}
	gates = append(gates, Gate{Op: OpMeasure, Qubits: measured, Clbits: clbits})

	n := b.target.N()
	return &Descriptor{
		Name:      fmt.Sprintf("shor-%s-%s", n, a),
		Modulus:   n.String(),
		Base:      a.String(),
		Layout:    layout,
		Truncated: b.target.Truncated(),
		Gates:     gates,
	}
}

func (b *Builder) powerTable(a *big.Int) []*big.Int {
	key := a.String()
	if b.tables != nil {
		if cached, ok := b.tables.Get(key); ok {
			return cached.([]*big.Int)
		}
	}
	table := numbertheory.PowerTable(a, b.target.n, b.layout.Control)
	if b.tables != nil {
		b.tables.Add(key, table)
	}
	return table
}

func control(i int) Qubit {
	return Qubit{Register: ControlRegister, Index: i}
}
