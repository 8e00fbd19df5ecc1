// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"revq/cli/internal/keychain"
)

// authCmd groups API-key management subcommands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the OpenAI API key",
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the OpenAI API key in the OS keychain",
	Long: `Prompts for the OpenAI API key and stores it in the OS keychain or
credential store. The key is read without echo and never written to disk.

The OPENAI_API_KEY environment variable, when set, takes precedence over the
stored key.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("OpenAI API key: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key := strings.TrimSpace(string(raw))
		if key == "" {
			return errors.New("empty key")
		}

		km, err := keychain.GetManager()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system")
			return err
		}
		if err := km.SaveAPIKey(key); err != nil {
			return fmt.Errorf("save key: %w", err)
		}
		pterm.Println("✅ API key stored in the OS keychain")
		return nil
	},
}

var authClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored OpenAI API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.DeleteAPIKey(); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		pterm.Println("✅ API key removed")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the API key would be resolved from",
	RunE: func(cmd *cobra.Command, args []string) error {
		if env := strings.TrimSpace(os.Getenv(keychain.EnvAPIKey)); env != "" {
			pterm.Println("Using API key from " + keychain.EnvAPIKey + " environment variable")
			return nil
		}
		km, err := keychain.GetManager()
		if err != nil {
			pterm.Println("⚠️  No key in environment and secure storage is unavailable")
			return nil
		}
		if _, err := km.LoadAPIKey(); err != nil {
			pterm.Println("⚠️  No API key configured")
			pterm.Println("   Set " + keychain.EnvAPIKey + " or run: revq auth set-key")
			return nil
		}
		pterm.Println("Using API key from the OS keychain")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetKeyCmd, authClearKeyCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
