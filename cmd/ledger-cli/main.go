// Command ledger-cli drives the probabilistic hypothesis-ledger engine
// from the command line.
//
// Commands:
//
//	run       Run a session against a YAML scenario file
//	replay    Replay a persisted audit file and verify its ledger
//	validate  Run pre-credit gates against a scenario without spending credit
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

// initLogLevel lets LEDGER_CLI_LOG_LEVEL and a --log-level flag override
// the default logging verbosity, read through viper so environment and
// flag sources compose the way the rest of the config stack expects.
func initLogLevel(logger *logrus.Logger, v *viper.Viper) {
	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	v := viper.New()
	v.SetEnvPrefix("LEDGER_CLI")
	v.AutomaticEnv()
	v.SetDefault("log_level", "info")

	root := &cobra.Command{
		Use:     "ledger-cli",
		Short:   "Drive the probabilistic hypothesis-ledger engine",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogLevel(logger, v)
		},
	}
	root.PersistentFlags().String("log-level", "info", "logging verbosity (debug, info, warn, error)")
	v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newRunCommand(logger),
		newReplayCommand(),
		newValidateCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
