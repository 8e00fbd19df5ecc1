// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"revq/cli/internal/config"
)

// schemaCmd prints the schema description sent to the generation model.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the database schema description",
	Long: `The schema command prints the schema description exactly as it is sent
to the generation model. Useful for checking what the model knows about the
tables, the current_songs view, and the relationships between them.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Schema")).
			WithPadding(1).
			Println(config.SchemaDescription)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
