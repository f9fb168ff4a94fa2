package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/anthropic"
	"github.com/evalengine/core/internal/providers/providercompat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := anthropic.New(anthropic.Config{})
	require.ErrorIs(t, err, providers.ErrMissingAPIKey)
}

func TestGenerateSendsTopPOverTemperatureWhenBothSet(t *testing.T) {
	var seen map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "hello there"}},
		})
	}))
	defer srv.Close()

	p, err := anthropic.New(anthropic.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), providers.GenerateRequest{
		Model:       "claude-3-5-sonnet-20241022",
		Prompt:      "hi",
		MaxTokens:   50,
		Temperature: 0.7,
		TopP:        0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	_, hasTopP := seen["top_p"]
	_, hasTemp := seen["temperature"]
	assert.True(t, hasTopP, "top_p should be sent when explicitly provided")
	assert.False(t, hasTemp, "temperature must be omitted when top_p is set")
}

func TestGenerateFallsBackToTemperatureWhenNoTopP(t *testing.T) {
	var seen map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	}))
	defer srv.Close()

	p, err := anthropic.New(anthropic.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), providers.GenerateRequest{
		Model:       "claude-3-5-sonnet-20241022",
		Prompt:      "hi",
		Temperature: 0.3,
	})
	require.NoError(t, err)

	_, hasTopP := seen["top_p"]
	_, hasTemp := seen["temperature"]
	assert.False(t, hasTopP)
	assert.True(t, hasTemp)
}

func TestGenerateTranslates429ToRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "rate limited"},
		})
	}))
	defer srv.Close()

	p, err := anthropic.New(anthropic.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), providers.GenerateRequest{Model: "claude-3-5-sonnet", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, providercompat.IsRateLimitError(err))
}
