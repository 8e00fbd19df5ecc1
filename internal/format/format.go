// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package format renders query results into human-readable text without any
// external service. It is the guaranteed-success fallback for the answer
// pipeline: Deterministic is pure and cannot fail, whatever the result shape.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"revq/cli/internal/store"
)

// noResults is the fixed message for empty result sets.
const noResults = "No results found."

// currencyColumns are substrings that mark a column as a monetary quantity.
// The heuristic is deliberate and documented rather than exhaustive: floating
// point values always render as currency (the schema's only REAL column is a
// dollar amount), and integers do too when the column name matches one of
// these markers. Everything else renders unadorned.
var currencyColumns = []string{"amount", "revenue", "total", "usd", "price", "royalt"}

// Deterministic renders res as text. Shapes:
//   - zero rows → fixed "no results" message
//   - one row, one column → "<column>: <value>"
//   - anything else → one line per row of "col: value" pairs joined by " | "
//
// NULL values render as an empty string in every branch. The question is
// accepted for signature parity with the LLM formatter; the rendering does
// not depend on it.
func Deterministic(question string, res *store.Result) string {
	if res == nil || res.Empty() {
		return noResults
	}

	if len(res.Rows) == 1 && len(res.Columns) == 1 {
		col := res.Columns[0]
		return fmt.Sprintf("%s: %s", col, renderValue(col, res.Rows[0][0]))
	}

	lines := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		parts := make([]string, 0, len(res.Columns))
		for i, col := range res.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			parts = append(parts, fmt.Sprintf("%s: %s", col, renderValue(col, v)))
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// renderValue formats a single scalar. Floats always get the currency
// treatment, integers only in currency-looking columns; everything else
// prints in its natural form.
func renderValue(col string, v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return currency(n)
	case float32:
		return currency(float64(n))
	case int64:
		if isCurrencyColumn(col) {
			return currency(float64(n))
		}
		return strconv.FormatInt(n, 10)
	case int:
		if isCurrencyColumn(col) {
			return currency(float64(n))
		}
		return strconv.Itoa(n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isCurrencyColumn(col string) bool {
	lower := strings.ToLower(col)
	for _, marker := range currencyColumns {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// currency renders n with a dollar sign and exactly two decimal places.
func currency(n float64) string {
	if n < 0 {
		return "-$" + strconv.FormatFloat(-n, 'f', 2, 64)
	}
	return "$" + strconv.FormatFloat(n, 'f', 2, 64)
}
