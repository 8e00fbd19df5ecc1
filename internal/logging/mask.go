// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reAPIKey  = regexp.MustCompile(`(?i)(api[_-]?key=)([^\s;]+)`)
	reToken   = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reOpenAI  = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`) // OpenAI-style secret keys
	rePasswrd = regexp.MustCompile(`(?i)(password=)([^\s;]+)`)
)

// Mask replaces sensitive values in the input string with "***".
// OpenAI-style keys are masked wherever they appear, including inside
// error messages echoed back by the API.
func Mask(s string) string {
	out := s
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = rePasswrd.ReplaceAllString(out, "$1***")
	out = reOpenAI.ReplaceAllString(out, "sk-***")
	// Basic env-like pairs key=VALUE; mask common secret keys
	for _, k := range []string{"OPENAI_API_KEY", "ACCESS_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
