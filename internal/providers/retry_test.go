package providers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithRetrySucceedsAfterRateLimits(t *testing.T) {
	if testing.Short() {
		t.Skip("exercises the full 2s/4s/8s backoff schedule; skipped with -short")
	}
	p := fake.NewRateLimitedThenOK(3, "finally")

	start := time.Now()
	out, err := providers.GenerateWithRetry(context.Background(), p, providers.GenerateRequest{})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "finally", out)
	assert.Equal(t, 4, p.Calls)
	assert.GreaterOrEqual(t, elapsed, 14*time.Second, "expected sleeps of 2s+4s+8s before the final attempt")
}

func TestGenerateWithRetryPropagatesNonRateLimitErrorImmediately(t *testing.T) {
	p := fake.NewFailing(errors.New("boom: invalid request"))

	start := time.Now()
	_, err := providers.GenerateWithRetry(context.Background(), p, providers.GenerateRequest{})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, time.Second, "non-rate-limit errors must not trigger backoff")
}

func TestGenerateWithRetryExhaustsAfterThreeRetries(t *testing.T) {
	if testing.Short() {
		t.Skip("exercises the full backoff schedule; skipped with -short")
	}
	p := fake.NewRateLimitedThenOK(10, "never reached")

	_, err := providers.GenerateWithRetry(context.Background(), p, providers.GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, 4, p.Calls)
}
