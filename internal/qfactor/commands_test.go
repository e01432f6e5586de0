package qfactor

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
		err      error
	}{
		"small composite":   {input: "15", expected: "15"},
		"surrounding space": {input: " 21\n", expected: "21"},
		"large":             {input: "340282366920938463463374607431768211457", expected: "340282366920938463463374607431768211457"},
		"four":              {input: "4", expected: "4"},
		"three":             {input: "3", err: ErrNumberTooSmall},
		"zero padded small": {input: "003", err: ErrNumberTooSmall},
		"negative":          {input: "-15", err: ErrInvalidNumber},
		"letters":           {input: "abc", err: ErrInvalidNumber},
		"decimal":           {input: "15.0", err: ErrInvalidNumber},
		"empty":             {input: "", err: ErrInvalidNumber},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			n, err := ParseNumber(tc.input)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "expected %s, got %v", tc.err, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, n.String())
		})
	}
}

func TestFactorNumber_PrintsResult(t *testing.T) {
	a, out := newTestApp(t)
	a.Sampler = fixedBase(5)

	require.NoError(t, a.FactorNumber(context.Background(), "15"))

	assert.Contains(t, out.String(), "Factoring... This may take time.")
	assert.Contains(t, out.String(), "Factors found: p = 5, q = 3, Verification: 5 × 3 = 15")
	assert.Contains(t, out.String(), "Execution time: ")
}

func TestInteractive(t *testing.T) {
	a, out := newTestApp(t)
	a.Sampler = fixedBase(5)
	a.In = strings.NewReader("abc\n3\n15\n0\n35\n")

	require.NoError(t, a.Interactive(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Invalid input. Enter a positive integer.")
	assert.Contains(t, output, "Enter a number greater than 3")
	assert.Contains(t, output, "Factors found: p = 5, q = 3")
	// Input after the exit sentinel is never read
	assert.NotContains(t, output, "= 35")
	assert.Equal(t, 4, strings.Count(output, "Enter a number to factor (0 to exit): "))
}

func TestInteractive_StopsAtEndOfInput(t *testing.T) {
	a, out := newTestApp(t)
	a.Sampler = fixedBase(5)
	a.In = strings.NewReader("15\n15")

	require.NoError(t, a.Interactive(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Factors found"))
}

func TestInteractive_ReportsRunErrorsAndContinues(t *testing.T) {
	a, out := newTestApp(t)
	a.Config.MaxQubits = 5
	a.Config.RejectOversizedTargets = true
	a.In = strings.NewReader("21\n0\n")

	require.NoError(t, a.Interactive(context.Background()))

	assert.Contains(t, out.String(), "Error: ")
}

func TestCircuit_Formats(t *testing.T) {
	tests := map[string]string{
		FormatQasm: "OPENQASM 2.0;",
		FormatYaml: "name: shor-21-2",
		FormatJson: `"name":"shor-21-2"`,
	}
	for format, expected := range tests {
		t.Run(format, func(t *testing.T) {
			a, out := newTestApp(t)
			require.NoError(t, a.Circuit("21", "2", format))
			assert.Contains(t, out.String(), expected)
		})
	}
}

func TestCircuit_RejectsBadInput(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Error(t, a.Circuit("21", "2", "svg"))
	assert.Error(t, a.Circuit("21", "two", FormatQasm))
	assert.Error(t, a.Circuit("2", "1", FormatQasm))
}

func TestVersion(t *testing.T) {
	a, out := newTestApp(t)
	require.NoError(t, a.Version())
	assert.Contains(t, out.String(), "Version:")
	assert.Contains(t, out.String(), "Commit:")
}
