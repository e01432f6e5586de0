package qfactor

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/G-Research/qfactor/internal/orchestrator"
	"github.com/G-Research/qfactor/internal/qfactor/build"
)

const (
	FormatQasm = "qasm"
	FormatYaml = "yaml"
	FormatJson = "json"

	exitSentinel = "0"
)

var (
	ErrInvalidNumber  = errors.New("not a positive integer")
	ErrNumberTooSmall = errors.New("number must be greater than 3")
)

// ParseNumber accepts a decimal integer of at least 4, written with digits only.
func ParseNumber(input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.TrimLeft(input, "0123456789") != "" {
		return nil, ErrInvalidNumber
	}
	n, ok := new(big.Int).SetString(input, 10)
	if !ok {
		return nil, ErrInvalidNumber
	}
	if n.Cmp(big.NewInt(4)) < 0 {
		return nil, ErrNumberTooSmall
	}
	return n, nil
}

// FactorNumber factors the decimal number in input and prints the result.
func (a *App) FactorNumber(ctx context.Context, input string) error {
	n, err := ParseNumber(input)
	if err != nil {
		return err
	}
	a.printf("\nFactoring... This may take time.\n")
	result, err := a.Factor(ctx, n)
	if err != nil {
		return err
	}
	a.printResult(n, result)
	return nil
}

// Interactive prompts for numbers until the user enters 0, the input ends or ctx is done. Invalid numbers
// re-prompt. An error from a factoring run is printed and the prompt continues, unless ctx is done.
func (a *App) Interactive(ctx context.Context) error {
	scanner := bufio.NewScanner(a.In)
	for {
		a.printf("\nEnter a number to factor (%s to exit): ", exitSentinel)
		if !scanner.Scan() {
			return errors.WithStack(scanner.Err())
		}
		input := strings.TrimSpace(scanner.Text())
		if input == exitSentinel {
			return nil
		}
		err := a.FactorNumber(ctx, input)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrInvalidNumber):
			a.printf("Invalid input. Enter a positive integer.\n")
		case errors.Is(err, ErrNumberTooSmall):
			a.printf("Enter a number greater than 3\n")
		default:
			a.printf("Error: %s\n", err)
		}
	}
}

// Circuit prints the circuit for base b against n in the given format.
func (a *App) Circuit(nInput, bInput, format string) error {
	n, err := ParseNumber(nInput)
	if err != nil {
		return err
	}
	b, ok := new(big.Int).SetString(strings.TrimSpace(bInput), 10)
	if !ok {
		return errors.Errorf("invalid base %q", bInput)
	}
	descriptor, err := a.Describe(n, b)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case FormatQasm:
		a.printf("%s", descriptor.QASM())
	case FormatYaml:
		out, err := descriptor.YAML()
		if err != nil {
			return err
		}
		a.printf("%s", out)
	case FormatJson:
		out, err := descriptor.JSON()
		if err != nil {
			return err
		}
		a.printf("%s\n", out)
	default:
		return errors.Errorf("unknown format %q; valid formats are %s, %s and %s", format, FormatQasm, FormatYaml, FormatJson)
	}
	return nil
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

func (a *App) printResult(n *big.Int, result *orchestrator.Result) {
	p, q := result.Factors.P, result.Factors.Q
	a.printf("\nFactors found: p = %s, q = %s, Verification: %s × %s = %s\n", p, q, p, q, new(big.Int).Mul(p, q))
	if !result.Factors.Verify(n) {
		a.printf("Warning: the factors do not multiply to %s\n", n)
	}
	a.printf("Execution time: %.2f seconds\n", result.Elapsed.Seconds())
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}
