package providers

import (
	"context"
	"time"

	"github.com/evalengine/core/internal/providers/ratelimit"
	"github.com/evalengine/core/internal/retry"
)

// rateLimitRetryConfig is the rate-limit retry rule: exponential backoff
// with base 2s and three retries, i.e. sleeps of {2s, 4s, 8s}, with no
// jitter so total backoff stays deterministic.
func rateLimitRetryConfig() retry.Config {
	return retry.Config{
		Attempts:  4, // initial attempt + 3 retries
		BaseDelay: 2 * time.Second,
		MaxDelay:  8 * time.Second,
		Retryable: ratelimit.IsRateLimitError,
	}
}

// GenerateWithRetry calls p.Generate, retrying only on rate-limit errors per
// the engine-wide backoff policy. Any other error propagates after the
// first attempt.
func GenerateWithRetry(ctx context.Context, p Provider, req GenerateRequest) (string, error) {
	var out string
	err := retry.Do(ctx, rateLimitRetryConfig(), func() error {
		text, genErr := p.Generate(ctx, req)
		if genErr != nil {
			return genErr
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
