package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"revq/cli/internal/agent"
	"revq/cli/internal/config"
	"revq/cli/internal/keychain"
	"revq/cli/internal/llm"
	"revq/cli/internal/retry"
	"revq/cli/internal/store"
)

// buildAgent wires the full pipeline: resolves the API key, opens and loads
// the store, and constructs the agent over the LLM client. The returned
// closer releases the store.
func buildAgent(ctx context.Context) (*agent.Agent, func() error, error) {
	apiKey, err := keychain.ResolveAPIKey()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return nil, nil, errors.New("no OpenAI API key configured; set OPENAI_API_KEY or run 'revq auth set-key'")
		}
		return nil, nil, fmt.Errorf("resolve api key: %w", err)
	}

	if err := config.ValidateData(cfg.DataDir); err != nil {
		return nil, nil, err
	}

	st, err := store.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	st.Timeout = config.QueryTimeout
	if err := st.Init(ctx, cfg.DataDir); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("init store: %w", err)
	}

	client := llm.NewClient(apiKey, cfg.Model)
	a := agent.New(client, client, st, agent.Config{
		Schema:        config.SchemaDescription,
		MaxResultRows: config.MaxResultRows,
		Retry: retry.Config{
			MaxRetries:      config.MaxRetries,
			InitialInterval: config.InitialBackoff,
			Multiplier:      2.0,
		},
	})

	return a, st.Close, nil
}

// printResult renders a pipeline result to the terminal.
func printResult(res agent.Result) {
	switch res.Status {
	case agent.StatusAnswered:
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Answer")).
			WithPadding(1).
			Println(res.Answer)
	case agent.StatusRejectedBySafety:
		pterm.Println(pterm.NewStyle(pterm.FgRed).Sprint("🛑 " + res.Answer))
	case agent.StatusExhausted, agent.StatusExecutionError:
		pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("⚠️  " + res.Answer))
	default:
		pterm.Println(res.Answer)
	}
	if res.SQL != "" {
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("   SQL: " + res.SQL))
	}
}
