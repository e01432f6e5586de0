package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/G-Research/qfactor/internal/common/app"
	"github.com/G-Research/qfactor/internal/qfactor"
)

func interactiveCmd(a *qfactor.App) *cobra.Command {
	var bindings map[string]string
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for numbers to factor until 0 is entered.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a, bindings)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.CreateContextWithShutdown(cmd.Context())
			defer cancel()
			return a.WithMetrics(ctx, func(ctx context.Context) error {
				return a.Interactive(ctx)
			})
		},
	}
	bindings = addRunFlags(cmd)
	return cmd
}
