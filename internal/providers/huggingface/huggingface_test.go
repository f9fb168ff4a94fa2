package huggingface_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/huggingface"
	"github.com/evalengine/core/internal/providers/providercompat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParsesArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/gpt2")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "hello"}})
	}))
	defer srv.Close()

	p, err := huggingface.New(huggingface.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := p.Generate(context.Background(), providers.GenerateRequest{Model: "gpt2", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestGenerateWorksWithoutAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "ok"}})
	}))
	defer srv.Close()

	p, err := huggingface.New(huggingface.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), providers.GenerateRequest{Model: "gpt2", Prompt: "hi"})
	require.NoError(t, err)
}

func TestGenerateSendsBearerTokenWhenSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "ok"}})
	}))
	defer srv.Close()

	p, err := huggingface.New(huggingface.Config{APIKey: "hf-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), providers.GenerateRequest{Model: "gpt2", Prompt: "hi"})
	require.NoError(t, err)
}

func TestGenerateTranslates429ToRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit reached"})
	}))
	defer srv.Close()

	p, err := huggingface.New(huggingface.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), providers.GenerateRequest{Model: "gpt2", Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, providercompat.IsRateLimitError(err))
}
