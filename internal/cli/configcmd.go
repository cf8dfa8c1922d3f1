package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective client configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.deps.Config
			return opts.output(cmd, cfg, func() string {
				return card("Config",
					field("File", opts.configPath),
					field("Base URL", cfg.BaseURL),
					field("Timeout", cfg.Timeout),
					field("Session", cfg.StorePath))
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration, including --base-url, to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.deps.Config.Save(opts.configPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successCard("Saved "+opts.configPath))
			return nil
		},
	})
	return cmd
}
