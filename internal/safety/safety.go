// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package safety screens LLM-generated SQL before it may touch the store.
// It performs lexical screening, not semantic analysis: comments are stripped
// so they cannot hide payloads, the statement must be a single SELECT, and a
// fixed set of destructive keywords is rejected on whole-word matches.
//
// The gate is an ordered list of independent checks composed by short-circuit
// evaluation; the first failing check wins. A query that passes every check is
// admitted and may be rewritten to carry a row LIMIT.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Kind is a machine-readable rejection category.
type Kind string

const (
	// NotSelect indicates the statement does not begin with SELECT.
	NotSelect Kind = "not_select"
	// ForbiddenKeyword indicates a destructive keyword appeared as a whole word.
	ForbiddenKeyword Kind = "forbidden_keyword"
	// MultiStatement indicates a statement separator followed by more content.
	MultiStatement Kind = "multi_statement"
)

// Verdict is the result of evaluating a query candidate. Either Admitted is
// true and SQL carries the text to execute, or Admitted is false and
// Kind/Detail describe which rule fired.
type Verdict struct {
	Admitted bool
	SQL      string
	Kind     Kind
	Detail   string
}

// Reason returns a user-facing explanation of a rejection. It names the rule
// that fired without enumerating the full blocklist.
func (v Verdict) Reason() string {
	switch v.Kind {
	case NotSelect:
		return "Blocked: only SELECT queries are allowed."
	case ForbiddenKeyword:
		return fmt.Sprintf("Blocked: SQL contains %q which is not allowed.", v.Detail)
	case MultiStatement:
		return "Blocked: multiple SQL statements are not allowed."
	}
	return "Blocked."
}

var (
	reLineComment  = regexp.MustCompile(`(?m)--.*$`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reMultiStmt    = regexp.MustCompile(`;\s*\S`)
	reLimit        = regexp.MustCompile(`(?i)\bLIMIT\b`)
)

// blockedKeywords are mutation and DDL commands rejected as standalone words.
// Word-boundary matching keeps identifiers that merely contain one of these
// as a substring (e.g. a column named last_updated) admissible.
var blockedKeywords = []string{
	"DROP", "DELETE", "INSERT", "UPDATE",
	"ALTER", "CREATE", "TRUNCATE", "EXEC", "EXECUTE",
}

var keywordPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(blockedKeywords))
	for _, kw := range blockedKeywords {
		m[kw] = regexp.MustCompile(`(?i)\b` + kw + `\b`)
	}
	return m
}()

// check is a single gate predicate over the comment-stripped statement.
// It returns a rejection verdict, or nil to pass control to the next check.
type check func(cleaned string) *Verdict

// checks run in order; comment stripping happens before any of them so that
// blocklisted tokens or separators hidden in comments cannot smuggle past.
var checks = []check{
	checkSelectOnly,
	checkBlockedKeywords,
	checkMultiStatement,
}

// Validate screens sql and returns an admitted or rejected verdict.
// Validation operates on a normalized copy with comments removed; the
// original text is what gets admitted for execution.
func Validate(sql string) Verdict {
	cleaned := stripComments(sql)

	for _, c := range checks {
		if v := c(cleaned); v != nil {
			log.Warn().
				Str("kind", string(v.Kind)).
				Str("sql", clip(sql, 80)).
				Msg("sql blocked")
			return *v
		}
	}

	return Verdict{Admitted: true, SQL: sql}
}

// stripComments removes -- line comments and /* */ block comments.
// The result is used only for validation, never for execution.
func stripComments(sql string) string {
	out := reLineComment.ReplaceAllString(sql, "")
	out = reBlockComment.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func checkSelectOnly(cleaned string) *Verdict {
	if strings.HasPrefix(strings.ToUpper(cleaned), "SELECT") {
		return nil
	}
	return &Verdict{Kind: NotSelect}
}

func checkBlockedKeywords(cleaned string) *Verdict {
	for _, kw := range blockedKeywords {
		if keywordPatterns[kw].MatchString(cleaned) {
			return &Verdict{Kind: ForbiddenKeyword, Detail: kw}
		}
	}
	return nil
}

func checkMultiStatement(cleaned string) *Verdict {
	// A single trailing semicolon is tolerated; a semicolon followed by
	// anything else is a piggybacked statement.
	if reMultiStmt.MatchString(cleaned) {
		return &Verdict{Kind: MultiStatement}
	}
	return nil
}

// EnforceLimit appends a LIMIT clause when the query carries none, so an
// LLM-generated query can never dump an unbounded table. It is idempotent:
// a query that already has a LIMIT comes back unchanged.
func EnforceLimit(sql string, maxRows int) string {
	if reLimit.MatchString(sql) {
		return sql
	}
	stripped := strings.TrimRight(strings.TrimSpace(sql), ";")
	limited := fmt.Sprintf("%s LIMIT %d", stripped, maxRows)
	log.Debug().Int("max_rows", maxRows).Msg("auto-appended LIMIT to query")
	return limited
}

// clip shortens s for log output.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
