package circuit

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTarget_RejectsSmallNumbers(t *testing.T) {
	for _, n := range []int64{-5, 0, 1, 3} {
		_, err := NewTarget(big.NewInt(n), 128)
		assert.True(t, errors.Is(err, ErrTargetTooSmall), "n=%d", n)
	}
	_, err := NewTarget(nil, 128)
	assert.True(t, errors.Is(err, ErrTargetTooSmall))
}

func TestNewTarget_RejectsTinyBudget(t *testing.T) {
	_, err := NewTarget(big.NewInt(15), 4)
	assert.True(t, errors.Is(err, ErrQubitBudgetTooSmall))
}

func TestTarget_Layout(t *testing.T) {
	target, err := NewTarget(big.NewInt(21), 128)
	require.NoError(t, err)

	assert.Equal(t, 5, target.BitLength())
	assert.Equal(t, 17, target.TotalQubits())
	assert.False(t, target.Truncated())
	assert.Equal(t, Layout{Control: 10, Target: 5, Ancilla: 2, Classical: 10}, target.Layout())
	assert.Equal(t, 17, target.Layout().Qubits())
}

func TestTarget_BitLengthMatchesCeilLog(t *testing.T) {
	// ceil(log2(N+1)) is 3 for 4..7 and 4 for 8..15
	for n, expected := range map[int64]int{4: 3, 7: 3, 8: 4, 15: 4, 16: 5} {
		target, err := NewTarget(big.NewInt(n), 128)
		require.NoError(t, err)
		assert.Equal(t, expected, target.BitLength(), "n=%d", n)
	}
}

func TestTarget_TruncatesToBudget(t *testing.T) {
	n, _ := new(big.Int).SetString("340282366920938463463374607431768211507", 10) // 129 bits
	target, err := NewTarget(n, 128)
	require.NoError(t, err)

	assert.True(t, target.Truncated())
	assert.Equal(t, 389, target.RequiredQubits())
	assert.Equal(t, 128, target.TotalQubits())
	layout := target.Layout()
	assert.Equal(t, Layout{Control: 84, Target: 42, Ancilla: 2, Classical: 84}, layout)
	assert.LessOrEqual(t, layout.Qubits(), 128)
}

func TestTarget_IsImmutable(t *testing.T) {
	n := big.NewInt(35)
	target, err := NewTarget(n, 128)
	require.NoError(t, err)

	n.SetInt64(99)
	target.N().SetInt64(77)
	assert.Equal(t, int64(35), target.N().Int64())
}
