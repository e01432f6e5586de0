package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/qfactor/internal/qfactor"
)

// Print version info and exit.
func versionCmd(a *qfactor.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			a.Out = cmd.OutOrStdout()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Version()
		},
	}
	return cmd
}
