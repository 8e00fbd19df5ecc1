// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// demoQuestions are the canonical questions answered by the demo run.
var demoQuestions = []string{
	"What is the total revenue for Alex Park?",
	"Which writer has the highest total revenue?",
	"What are the top 3 songs by total revenue?",
	"How many songs does each writer have?",
}

// demoCmd loads the data and runs the canonical demo questions in sequence.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the canonical demo questions",
	Long: `The demo command loads the royalties CSV files and runs a fixed set of
questions through the full pipeline, printing each answer. It exercises
single-value currency answers, ranking queries, and multi-row results.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeStore, err := buildAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		for i, q := range demoQuestions {
			if i > 0 {
				pterm.Println()
			}
			pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ " + q))

			spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
			res := a.Ask(cmd.Context(), q)
			spinner.Stop()

			printResult(res)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
