package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"macrocycle/internal/config"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "List configuration environment variables, or print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !show {
				return config.Usage(cmd.OutOrStdout())
			}
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print the effective configuration as YAML")
	return cmd
}
