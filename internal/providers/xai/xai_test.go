package xai_test

import (
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/xai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := xai.New(xai.Config{})
	require.ErrorIs(t, err, providers.ErrMissingAPIKey)
}

func TestNewSucceedsWithAPIKey(t *testing.T) {
	g, err := xai.New(xai.Config{APIKey: "xai-test"})
	require.NoError(t, err)
	assert.NotNil(t, g)
}
