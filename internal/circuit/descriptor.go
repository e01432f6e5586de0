package circuit

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"

	"github.com/G-Research/qfactor/internal/common/util"
)

type Op string

const (
	OpH       Op = "h"
	OpCX      Op = "cx"
	OpCCX     Op = "ccx"
	OpMeasure Op = "measure"
)

// Register names used in every descriptor.
const (
	ControlRegister   = "control"
	TargetRegister    = "target"
	AncillaRegister   = "ancilla"
	ClassicalRegister = "classical"
)

// Qubit addresses one qubit of a named register.
type Qubit struct {
	Register string `json:"register"`
	Index    int    `json:"index"`
}

func (q Qubit) String() string {
	return fmt.Sprintf("%s[%d]", q.Register, q.Index)
}

// Gate is a single operation. Clbits is only set for measurements and names indices of
// the classical register.
type Gate struct {
	Op     Op      `json:"op"`
	Qubits []Qubit `json:"qubits"`
	Clbits []int   `json:"clbits,omitempty"`
}

// Descriptor is the declarative description of one period-finding circuit for a given
// (N, a) pair. Values are treated as immutable after Build returns them.
type Descriptor struct {
	Name      string `json:"name"`
	Modulus   string `json:"modulus"`
	Base      string `json:"base"`
	Layout    Layout `json:"layout"`
	Truncated bool   `json:"truncated,omitempty"`
	Gates     []Gate `json:"gates"`
}

// ModulusInt parses the modulus N.
func (d *Descriptor) ModulusInt() (*big.Int, error) {
	return parseDecimal("modulus", d.Modulus)
}

// BaseInt parses the base a.
func (d *Descriptor) BaseInt() (*big.Int, error) {
	return parseDecimal("base", d.Base)
}

// GateCounts tallies the gates by operation.
func (d *Descriptor) GateCounts() map[Op]int {
	counts := make(map[Op]int, 4)
	for _, gate := range d.Gates {
		counts[gate.Op]++
	}
	return counts
}

func (d *Descriptor) JSON() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Descriptor) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// QASM renders the descriptor as an OpenQASM 2.0 program.
func (d *Descriptor) QASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&sb, "// %s\n", d.Name)
	fmt.Fprintf(&sb, "qreg %s[%d];\n", ControlRegister, d.Layout.Control)
	fmt.Fprintf(&sb, "qreg %s[%d];\n", TargetRegister, d.Layout.Target)
	fmt.Fprintf(&sb, "qreg %s[%d];\n", AncillaRegister, d.Layout.Ancilla)
	fmt.Fprintf(&sb, "creg %s[%d];\n", ClassicalRegister, d.Layout.Classical)
	for _, gate := range d.Gates {
		if gate.Op == OpMeasure {
			for i, qubit := range gate.Qubits {
				fmt.Fprintf(&sb, "measure %s -> %s[%d];\n", qubit, ClassicalRegister, gate.Clbits[i])
			}
			continue
		}
		operands := make([]string, len(gate.Qubits))
		for i, qubit := range gate.Qubits {
			operands[i] = qubit.String()
		}
		fmt.Fprintf(&sb, "%s %s;\n", gate.Op, strings.Join(operands, ","))
	}
	return sb.String()
}

func parseDecimal(field, value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errors.Errorf("circuit: descriptor %s %q is not a decimal integer", field, value)
	}
	return parsed, nil
}

// Counts is a measurement histogram: bitstring to number of shots that produced it. An
// empty histogram means the circuit could not be executed.
type Counts map[string]int64

// Total is the number of shots recorded.
func (c Counts) Total() int64 {
	var total int64
	for _, count := range c {
		total += count
	}
	return total
}

func (c Counts) Empty() bool {
	return len(c) == 0
}

// MostFrequent returns up to k bitstrings ordered by descending count, ties broken by bitstring.
func (c Counts) MostFrequent(k int) []string {
	outcomes := maps.Keys(c)
	slices.SortFunc(outcomes, func(a, b string) bool {
		if c[a] != c[b] {
			return c[a] > c[b]
		}
		return a < b
	})
	return outcomes[:util.Max(0, util.Min(k, len(outcomes)))]
}
