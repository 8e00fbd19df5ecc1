// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"revq/cli/internal/terminal"
)

// replCmd runs the interactive question loop.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive question loop",
	Long: `The repl command starts an interactive session. Each line is answered by
the full pipeline; the store is loaded once and reused across questions.

Type "exit" or "quit" (or press Ctrl-D) to leave, "clear" to clear the screen.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeStore, err := buildAgent(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("revq")).
			WithPadding(1).
			Println("Ask about the royalties data. Type 'exit' to leave.")
		pterm.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("? ")
			if !scanner.Scan() {
				pterm.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch strings.ToLower(line) {
			case "exit", "quit":
				return nil
			case "clear":
				terminal.Clear()
				continue
			case "":
				continue
			}

			cursor.Hide()
			spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
			res := a.Ask(cmd.Context(), line)
			spinner.Stop()
			cursor.Show()

			printResult(res)
			pterm.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
