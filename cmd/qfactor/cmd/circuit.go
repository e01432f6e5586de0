package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/qfactor/internal/qfactor"
)

func circuitCmd(a *qfactor.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "circuit <N> <a>",
		Short: "Print the period-finding circuit for base a modulo N without running it.",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a, map[string]string{"maxQubits": "maxQubits"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			return a.Circuit(args[0], args[1], format)
		},
	}
	cmd.Flags().String("format", qfactor.FormatQasm, "Output format: qasm, yaml or json")
	cmd.Flags().Int("maxQubits", 0, "Qubit budget for the circuit")
	return cmd
}
