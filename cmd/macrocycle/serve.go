package main

import (
	"github.com/spf13/cobra"

	"macrocycle/internal/app"
	"macrocycle/internal/infrastructure"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the JSON API: POST /api/v1/analyze accepts a multipart upload of the
quarterly table (and optionally the annual table) and answers with the report.
Metrics are served on /metrics. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			a, err := app.NewApplication(cfg, logger, Version)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
