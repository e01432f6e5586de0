package main

import (
	"os"

	"github.com/G-Research/qfactor/cmd/qfactor/cmd"
	"github.com/G-Research/qfactor/internal/common/logging"
)

func main() {
	if err := logging.ConfigureCommandLineLogging(logging.DefaultConfig(), os.Stderr); err != nil {
		os.Exit(1)
	}
	root := cmd.RootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
