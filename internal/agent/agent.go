// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package agent orchestrates the question-answering pipeline:
// sanitize → generate SQL → safety gate → execute → format.
//
// Both LLM call sites carry independent retry budgets with exponential
// backoff. A rejected query candidate never reaches the store, and every call
// to Ask produces a usable Result: formatting failures fall back to the
// deterministic renderer, and all other failures come back as typed statuses
// with explanatory text rather than faults.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"revq/cli/internal/format"
	"revq/cli/internal/llm"
	"revq/cli/internal/retry"
	"revq/cli/internal/safety"
	"revq/cli/internal/sanitize"
	"revq/cli/internal/store"
)

// Status classifies the outcome of one Ask call.
type Status string

const (
	// StatusAnswered means the pipeline produced an answer from query results.
	StatusAnswered Status = "answered"
	// StatusRejectedBySafety means the generated SQL failed the safety gate.
	StatusRejectedBySafety Status = "rejected_by_safety"
	// StatusExhausted means SQL generation failed after all retries.
	StatusExhausted Status = "exhausted"
	// StatusNoResults means the query ran but returned no rows, or the
	// question was empty after sanitization.
	StatusNoResults Status = "no_results"
	// StatusExecutionError means the admitted SQL failed in the store
	// (unknown column, bad syntax the gate does not screen for).
	StatusExecutionError Status = "execution_error"
)

// Result is the final outcome of one question.
type Result struct {
	// Answer is always usable text, whatever the status.
	Answer string
	// Status classifies how the pipeline terminated.
	Status Status
	// SQL is the admitted query, when one was executed.
	SQL string
}

// SQLGenerator is the stage-1 collaborator producing a query candidate.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, schema, question string) (string, error)
}

// AnswerFormatter is the stage-2 collaborator phrasing the result.
type AnswerFormatter interface {
	FormatAnswer(ctx context.Context, question, resultJSON string) (string, error)
}

// Querier executes admitted SQL against the store.
type Querier interface {
	Query(ctx context.Context, sql string) (*store.Result, error)
}

// Config bounds the pipeline.
type Config struct {
	// Schema is the schema description sent with every generation request.
	Schema string
	// MaxResultRows is the LIMIT enforced on admitted queries.
	MaxResultRows int
	// Retry is the per-call-site retry policy for both LLM stages.
	Retry retry.Config
}

// Agent sequences the pipeline. It holds no per-request state; one Agent
// serves any number of Ask calls.
type Agent struct {
	gen       SQLGenerator
	formatter AnswerFormatter
	store     Querier
	cfg       Config
}

// New creates an Agent over the given collaborators.
func New(gen SQLGenerator, formatter AnswerFormatter, querier Querier, cfg Config) *Agent {
	return &Agent{gen: gen, formatter: formatter, store: querier, cfg: cfg}
}

// Ask answers a natural-language question. It always returns a Result;
// failures are folded into the Answer text and Status, never raised.
func (a *Agent) Ask(ctx context.Context, question string) Result {
	question = sanitize.Question(question)
	if question == "" {
		return Result{
			Answer: "Please ask a question about the royalties data.",
			Status: StatusNoResults,
		}
	}
	log.Info().Str("question", question).Msg("question received")

	// Stage 1: generate the query candidate.
	candidate, err := a.generate(ctx, question)
	if err != nil {
		log.Error().Err(err).Msg("sql generation exhausted")
		return Result{
			Answer: fmt.Sprintf("Could not generate SQL after %d attempts: %v. Check your network and API key, then try again.",
				a.cfg.Retry.MaxRetries+1, err),
			Status: StatusExhausted,
		}
	}
	candidate = StripFences(candidate)
	log.Info().Str("sql", candidate).Msg("generated sql")

	// Safety gate: a rejected candidate is never executed.
	verdict := safety.Validate(candidate)
	if !verdict.Admitted {
		log.Error().Str("kind", string(verdict.Kind)).Msg("sql rejected")
		return Result{
			Answer: verdict.Reason(),
			Status: StatusRejectedBySafety,
		}
	}
	admitted := safety.EnforceLimit(verdict.SQL, a.cfg.MaxResultRows)

	// Execute. Errors here are generation-quality problems, not transient
	// infrastructure, so they are surfaced without retrying.
	res, err := a.store.Query(ctx, admitted)
	if err != nil {
		log.Error().Err(err).Msg("sql execution error")
		return Result{
			Answer: fmt.Sprintf("SQL execution error: %v", err),
			Status: StatusExecutionError,
			SQL:    admitted,
		}
	}

	if res.Empty() {
		log.Info().Msg("query returned no results")
		return Result{Answer: "No results found.", Status: StatusNoResults, SQL: admitted}
	}

	// Stage 2: phrase the answer, falling back to the deterministic
	// formatter on exhaustion. The fallback cannot fail.
	fallback := format.Deterministic(question, res)
	answer := a.formatAnswer(ctx, question, res, fallback)

	return Result{Answer: answer, Status: StatusAnswered, SQL: admitted}
}

// generate calls the generation collaborator under the retry policy.
// Permanent API errors (bad key) abort without consuming the backoff budget.
func (a *Agent) generate(ctx context.Context, question string) (string, error) {
	var sql string
	err := retry.Do(ctx, func(ctx context.Context) error {
		out, err := a.gen.GenerateSQL(ctx, a.cfg.Schema, question)
		if err != nil {
			if !llm.Retryable(err) {
				return &retry.Permanent{Err: err}
			}
			return err
		}
		sql = out
		return nil
	}, a.cfg.Retry)
	if err != nil {
		return "", err
	}
	return sql, nil
}

// formatAnswer runs the stage-2 collaborator with the same retry policy as
// stage 1. Any failure, including exhaustion, selects the fallback; the
// caller never sees a stage-2 error.
func (a *Agent) formatAnswer(ctx context.Context, question string, res *store.Result, fallback string) string {
	var answer string
	err := retry.Do(ctx, func(ctx context.Context) error {
		out, err := a.formatter.FormatAnswer(ctx, question, res.JSON())
		if err != nil {
			if !llm.Retryable(err) {
				return &retry.Permanent{Err: err}
			}
			return err
		}
		answer = strings.TrimSpace(out)
		return nil
	}, a.cfg.Retry)
	if err != nil || answer == "" {
		log.Warn().Err(err).Msg("answer formatting failed, using deterministic fallback")
		return fallback
	}
	return answer
}

// StripFences removes markdown code-fence decoration the model sometimes
// wraps SQL in, with or without a language tag.
func StripFences(raw string) string {
	sql := strings.TrimSpace(raw)
	if strings.HasPrefix(sql, "```") {
		if i := strings.Index(sql, "\n"); i >= 0 {
			sql = sql[i+1:]
		} else {
			sql = sql[3:]
		}
	}
	if strings.HasSuffix(sql, "```") {
		sql = sql[:strings.LastIndex(sql, "```")]
	}
	return strings.TrimSpace(sql)
}
