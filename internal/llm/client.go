// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm wraps the OpenAI chat-completion API for the two pipeline
// stages: SQL generation from a natural-language question, and rendering an
// execution result as a natural-language answer. Both calls run at
// temperature zero so repeated questions produce the same SQL.
package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Client calls the chat-completion service.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a Client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// generationRules are appended to the schema description in the system
// prompt. They steer the model toward the current_songs view and monetary
// rounding; the safety gate does not depend on the model honoring them.
const generationRules = `RULES:
- Return ONLY the SQL query, nothing else.
- Do NOT wrap it in markdown code blocks.
- Use the current_songs VIEW (not dim_song directly) when calculating revenue to avoid double-counting from historical title records.
- Always use ROUND() for monetary amounts to 2 decimal places.
- Use SUM() for total revenue calculations.`

// GenerateSQL asks the model for a SQLite-compatible query answering the
// sanitized question against the described schema. The returned text is a
// query candidate: untrusted until the safety gate admits it.
func (c *Client) GenerateSQL(ctx context.Context, schema, question string) (string, error) {
	system := fmt.Sprintf(`You are a SQL expert for a music publishing company.
Given the following database schema, generate a SQLite-compatible SQL query
to answer the user's question.

%s

%s`, schema, generationRules)

	return c.complete(ctx, system, question)
}

// FormatAnswer asks the model to phrase the serialized execution result as a
// short, data-backed answer to the original question.
func (c *Client) FormatAnswer(ctx context.Context, question, resultJSON string) (string, error) {
	prompt := fmt.Sprintf(`The user asked: %q

The SQL query returned this data:
%s

Provide a clear, concise answer to the user's question based on this data.
Include the specific numbers. Be brief: 1-2 sentences.`, question, resultJSON)

	return c.complete(ctx, "You are a helpful financial analyst. Give clear, data-backed answers.", prompt)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	out := resp.Choices[0].Message.Content
	log.Debug().Str("model", c.model).Int("chars", len(out)).Msg("completion received")
	return out, nil
}
