package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"vadapro/analyzer/pkg/cli"
)

// defaultConfigFile is used when --config is not given and the file exists.
const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vadapro",
	Short: "VADAPRO AI analysis gateway",
	Long: `The VADAPRO AI analysis gateway answers natural-language questions about
uploaded datasets.

Requests pass an admission controller that enforces:
  - a per-user sliding one-minute limit (excess requests are queued)
  - a per-user daily limit (excess requests are rejected)
  - a global per-minute token budget (excess requests are rejected)

The Gemini API key is read from GEMINI_API_KEY or a .env file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configPath returns the file to load. The default file is optional: when
// it does not exist the configuration comes from defaults and the
// environment.
func configPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config") {
		return cfgFile
	}
	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return cfgFile
}
