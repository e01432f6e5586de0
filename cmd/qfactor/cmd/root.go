package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/G-Research/qfactor/internal/common"
	commonconfig "github.com/G-Research/qfactor/internal/common/config"
	"github.com/G-Research/qfactor/internal/common/logging"
	"github.com/G-Research/qfactor/internal/qfactor"
	"github.com/G-Research/qfactor/internal/qfactor/configuration"
)

const (
	defaultConfigPath = "./config/qfactor"
	configFlag        = "config"
	// Merged over the defaults, before any --config files, when present in the home directory
	userConfigFile = ".qfactor.yaml"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qfactor",
		Short: "qfactor factors integers with Shor's period-finding algorithm.",
		Long: `qfactor factors integers with Shor's period-finding algorithm.

Defaults are read from ./config/qfactor/config.yaml. ~/.qfactor.yaml, if it exists, is merged over them,
followed by any files given with --config in order. QFACTOR_ environment variables (e.g. QFACTOR_BACKEND_TYPE=remote) override both.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSlice(
		configFlag,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	cmd.PersistentFlags().String("defaultConfig", defaultConfigPath, "Directory containing the default config.yaml")

	cmd.AddCommand(
		factorCmd(qfactor.New()),
		interactiveCmd(qfactor.New()),
		circuitCmd(qfactor.New()),
		versionCmd(qfactor.New()),
	)
	return cmd
}

// initParams loads and validates the configuration, applying any of the flags in bindings that were set.
// bindings maps config keys to flag names of cmd.
func initParams(cmd *cobra.Command, app *qfactor.App, bindings map[string]string) error {
	app.Out = cmd.OutOrStdout()
	app.In = cmd.InOrStdin()

	configs, err := cmd.Flags().GetStringSlice(configFlag)
	if err != nil {
		return err
	}
	overrides := make([]string, 0, len(configs)+1)
	userConfig, found, err := common.UserConfigFile(userConfigFile)
	if err != nil {
		return err
	}
	if found {
		overrides = append(overrides, userConfig)
	}
	overrides = append(overrides, configs...)
	defaultPath, err := cmd.Flags().GetString("defaultConfig")
	if err != nil {
		return err
	}
	flags := make(map[string]*pflag.Flag, len(bindings))
	for key, name := range bindings {
		flags[key] = cmd.Flags().Lookup(name)
	}

	var config configuration.QfactorConfig
	if err := common.LoadConfig(&config, defaultPath, overrides, flags); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		commonconfig.LogValidationErrors(err)
		return err
	}
	if err := logging.ConfigureCommandLineLogging(config.Logging, cmd.ErrOrStderr()); err != nil {
		return err
	}
	app.Config = &config
	return nil
}

// addRunFlags registers the flags shared by commands that factor numbers and returns their config keys.
func addRunFlags(cmd *cobra.Command) map[string]string {
	cmd.Flags().Int("shots", 0, "Shots per circuit")
	cmd.Flags().Int("basesPerRound", 0, "Candidate bases tried per round")
	cmd.Flags().Int("maxParallelJobs", 0, "Maximum circuits in flight at once")
	cmd.Flags().Int("maxRounds", 0, "Give up after this many rounds (0 means never)")
	cmd.Flags().Duration("maxDuration", 0, "Give up after this long (0 means never)")
	cmd.Flags().String("backend", "", "Execution backend: simulator or remote")
	cmd.Flags().Int64("seed", 0, "Simulator seed (0 seeds from the clock)")
	cmd.Flags().Uint16("metricsPort", 0, "Serve prometheus metrics on this port (0 disables)")
	cmd.Flags().String("logLevel", "", "Log level, e.g. debug or warn")
	return map[string]string{
		"shots":              "shots",
		"basesPerRound":      "basesPerRound",
		"maxParallelJobs":    "maxParallelJobs",
		"limits.maxRounds":   "maxRounds",
		"limits.maxDuration": "maxDuration",
		"backend.type":       "backend",
		"backend.seed":       "seed",
		"metricsPort":        "metricsPort",
		"logging.level":      "logLevel",
	}
}
