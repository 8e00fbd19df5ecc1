package llm

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Retryable reports whether err looks like a transient infrastructure
// failure worth retrying. Rate limits (429), server-side errors (5xx),
// timeouts, and network trouble are transient. Client-side API errors
// (bad key, malformed request) are permanent. Errors that cannot be
// classified count as transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return true
		}
		if apiErr.HTTPStatusCode >= 400 {
			return false
		}
	}

	return true
}
