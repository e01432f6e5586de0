package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/G-Research/qfactor/internal/common/app"
	"github.com/G-Research/qfactor/internal/qfactor"
)

func factorCmd(a *qfactor.App) *cobra.Command {
	var bindings map[string]string
	cmd := &cobra.Command{
		Use:   "factor <N>",
		Short: "Factor a single integer and print the factor pair.",
		Example: `qfactor factor 21
qfactor factor 35 --maxRounds 50 --seed 7`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a, bindings)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.CreateContextWithShutdown(cmd.Context())
			defer cancel()
			return a.WithMetrics(ctx, func(ctx context.Context) error {
				return a.FactorNumber(ctx, args[0])
			})
		},
	}
	bindings = addRunFlags(cmd)
	return cmd
}
