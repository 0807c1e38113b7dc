package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vadapro/analyzer/pkg/cli"
	"vadapro/analyzer/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report every validation error.

Examples:
  # Validate config.yaml
  vadapro validate

  # Validate a specific file
  vadapro validate --config /etc/vadapro/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return cli.NewConfigError(path, err.Error())
	}

	out := cmd.OutOrStdout()
	if path == "" {
		fmt.Fprintln(out, "✓ Configuration valid (defaults and environment)")
	} else {
		fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
	}

	if verbose {
		fmt.Fprintf(out, "  listen address:        %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  model:                 %s\n", cfg.Gemini.Model)
		fmt.Fprintf(out, "  requests per minute:   %d\n", cfg.Limits.RequestsPerMinute)
		fmt.Fprintf(out, "  requests per day:      %d\n", cfg.Limits.RequestsPerDay)
		fmt.Fprintf(out, "  tokens per minute:     %d\n", cfg.Limits.MaxTokensPerMinute)
		fmt.Fprintf(out, "  queue depth / workers: %d / %d\n", cfg.Queue.MaxDepth, cfg.Queue.Workers)
		fmt.Fprintf(out, "  ledger:                %s\n", ledgerDescription(&cfg.Ledger))
	}
	if cfg.Gemini.APIKey == "" {
		fmt.Fprintln(out, "! GEMINI_API_KEY is not set; analysis requests will fail with CONFIG_ERROR")
	}
	return nil
}

func ledgerDescription(cfg *config.LedgerConfig) string {
	switch {
	case !cfg.IsEnabled():
		return "disabled"
	case cfg.Backend == "sqlite":
		return "sqlite (" + cfg.SQLite.Path + ")"
	default:
		return cfg.Backend
	}
}
