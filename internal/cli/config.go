package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/finance/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file
  show     - Print the effective configuration

Examples:
  finance config init -o finance.yaml
  finance config validate -f finance.yaml`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigValidateCmd(),
		newConfigShowCmd(rc),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nAdd your quote.api_key (or export FINNHUB_API_KEY) and run with:")
			fmt.Fprintf(out, "  finance --config %s portfolio value\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "finance.yaml", "output config file path")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			key := "not set"
			if cfg.Quote.APIKey != "" {
				key = "set"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Data: %s\n", dataLocation(cfg))
			fmt.Fprintf(out, "  Quotes: %s (api key %s, %d req/min)\n", cfg.Quote.BaseURL, key, cfg.Quote.RateLimit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newConfigShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (api key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *rc.Config()
			if cfg.Quote.APIKey != "" {
				cfg.Quote.APIKey = "********"
			}
			return printJSON(cmd, cfg)
		},
	}
}

func dataLocation(cfg *config.Config) string {
	if cfg.App.DataDir != "" {
		return cfg.App.DataDir
	}
	return "per-user data dir for " + cfg.App.Name
}
