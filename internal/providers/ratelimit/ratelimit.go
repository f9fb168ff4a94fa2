// Package ratelimit provides the shared rate-limit error type and
// classifiers used by provider adapters and the provider-wide retry
// policy. It has no dependency on the providers package so that both
// providers and providercompat can depend on it without an import cycle.
package ratelimit

import (
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// RateLimitError marks an error as a transient rate-limit condition so
// retry.Do (via IsRateLimitError) knows to back off and retry rather than
// surface it immediately.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// IsRateLimitError reports whether err (or anything in its chain) is a rate
// limit condition: status 429 or the message contains "rate limit". Only
// this condition is retried; everything else propagates.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return true
	}
	return IsRateLimitMessage(err.Error())
}

// IsRateLimitMessage classifies by message text only: it reports whether
// msg contains "rate limit" (case-insensitive). The 429 status check is
// made by IsRateLimitError and by the provider adapters.
func IsRateLimitMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "rate limit")
}
