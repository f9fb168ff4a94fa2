package openrouter_test

import (
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := openrouter.New(openrouter.Config{})
	require.ErrorIs(t, err, providers.ErrMissingAPIKey)
}

func TestNewWithRateLimitSucceeds(t *testing.T) {
	p, err := openrouter.New(openrouter.Config{APIKey: "or-test", RateLimit: 5})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewWithoutRateLimitSucceeds(t *testing.T) {
	p, err := openrouter.New(openrouter.Config{APIKey: "or-test"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
