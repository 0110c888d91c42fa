package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"macrocycle/internal/config"
	"macrocycle/internal/infrastructure"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "macrocycle",
		Short: "Business-cycle decomposition of quarterly national accounts",
		Long: `macrocycle deflates nominal GDP, consumption and investment with the GDP
deflator, separates log trend from cycle with the Hodrick-Prescott filter and
reports volatility, comovement, turning points and shock episodes.

Configuration is read from macrocycle.yaml (or --config), then MACRO_*
environment variables, then command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "configuration file (YAML)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newQuartersCmd(),
		newServeCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads the configuration and applies the global flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.verbose {
		cfg.Analysis.Verbose = true
	}
	return cfg, nil
}

// newLogger builds the command logger on the command's error stream and
// installs it as the default.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logging := cfg.Logging
	logging.Level = cfg.LogLevel()
	logger, err := infrastructure.NewLogger(logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	slog.SetDefault(logger)
	return logger, nil
}
