// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// askCmd answers a single question and exits.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about the royalties data",
	Long: `The ask command runs the full pipeline once: the question is sanitized,
translated to SQL, screened by the safety gate, executed against the royalties
store, and answered in plain language.

The command exits 0 even when the question could not be answered; the reason
is printed instead. Only setup problems (missing data files, no API key)
produce a non-zero exit.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		a, closeStore, err := buildAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
		res := a.Ask(cmd.Context(), question)
		spinner.Stop()

		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
