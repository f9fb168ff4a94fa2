package providercompat_test

import (
	"testing"

	"github.com/evalengine/core/internal/providers/providercompat"
	"github.com/stretchr/testify/assert"
)

func TestUsesMaxCompletionTokensPrefixes(t *testing.T) {
	cases := map[string]bool{
		"o1-mini":             true,
		"o3-mini-2025-01-31":  true,
		"gpt-4o":              true,
		"gpt-4o-mini":         true,
		"gpt-4.5-preview":     true,
		"gpt-5":               true,
		"gpt-4-turbo":         false,
		"gpt-3.5-turbo":       false,
		"claude-3-5-sonnet":   false,
	}
	for model, want := range cases {
		assert.Equalf(t, want, providercompat.UsesMaxCompletionTokens(model), "model=%s", model)
	}
}

func TestIsOSeriesReasoningModel(t *testing.T) {
	assert.True(t, providercompat.IsOSeriesReasoningModel("o1-preview"))
	assert.True(t, providercompat.IsOSeriesReasoningModel("o3-mini"))
	assert.False(t, providercompat.IsOSeriesReasoningModel("gpt-4o"))
}

func TestBuildChatRequestOSeriesOmitsTopP(t *testing.T) {
	req := providercompat.BuildChatRequest("o1-mini", "hi", 100, 0.7, 0.9)
	assert.Equal(t, float32(0), req.TopP)
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Equal(t, 100, req.MaxCompletionTokens)
	assert.Equal(t, 0, req.MaxTokens)
}

func TestBuildChatRequestOlderModelUsesMaxTokens(t *testing.T) {
	req := providercompat.BuildChatRequest("gpt-3.5-turbo", "hi", 100, 0.7, 0.9)
	assert.Equal(t, 100, req.MaxTokens)
	assert.Equal(t, 0, req.MaxCompletionTokens)
	assert.Equal(t, float32(0.9), req.TopP)
}

func TestIsRateLimitMessage(t *testing.T) {
	assert.True(t, providercompat.IsRateLimitMessage("Rate limit exceeded, slow down"))
	assert.True(t, providercompat.IsRateLimitMessage("server busy: rate LIMIT hit"))
	assert.False(t, providercompat.IsRateLimitMessage("internal server error"))
}
