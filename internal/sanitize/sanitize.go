// Package sanitize normalizes and bounds untrusted natural-language input
// before it reaches the generation model. Sanitization never rejects: any
// input, including the empty string, comes back as a usable string. The
// pipeline decides what an empty question means, not this package.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// MaxQuestionLength bounds sanitized input, in runes.
// Kept in sync with config.MaxQuestionLength; duplicated here so the package
// has no dependencies beyond logging.
const MaxQuestionLength = 500

// Question strips control characters, trims whitespace, and truncates the
// input to MaxQuestionLength runes. Truncation is silent toward the caller
// but logged as an observable side effect. Newlines and tabs survive.
func Question(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimSpace(b.String())

	runes := []rune(cleaned)
	if len(runes) > MaxQuestionLength {
		log.Info().
			Int("from", len(runes)).
			Int("to", MaxQuestionLength).
			Msg("question truncated")
		cleaned = string(runes[:MaxQuestionLength])
	}

	return cleaned
}
