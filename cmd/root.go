// Package cmd provides the command-line interface for the revq agent.
// It implements subcommands for asking questions, running the interactive
// loop, managing the OpenAI API key, and inspecting the schema, using the
// Cobra CLI framework with a rich terminal UI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"revq/cli/internal/config"
	"revq/cli/internal/logging"
)

var (
	showVersion bool
	flagDataDir string
	flagModel   string

	// cfg is loaded once before any command runs.
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "revq",
	Short:         "Ask natural-language questions about music royalties data",
	Long: `revq is a text-to-SQL agent for a music publishing royalties database.
It translates a natural-language question into a SQL query, screens the query
through a safety gate so it can never modify data, executes it against the
royalties store, and answers in plain language.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagModel != "" {
			cfg.Model = flagModel
		}
		logging.Setup(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("revq %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the royalties CSV files (default \"data\")")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Chat-completion model override")
}
