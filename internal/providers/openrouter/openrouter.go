// Package openrouter implements the Provider Adapter for OpenRouter, an
// OpenAI-compatible router over many upstream models.
package openrouter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
	"github.com/evalengine/core/internal/ratelimit"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenRouter is the OpenRouter chat-completions provider.
type OpenRouter struct {
	client *goopenai.Client
}

// New creates an OpenRouter provider. An empty APIKey is a configuration
// error. When cfg.RateLimit > 0, outbound HTTP calls are throttled with a
// token-bucket limiter sized to that steady-state rate.
func New(cfg Config) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openrouter", providers.ErrMissingAPIKey)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL

	if cfg.RateLimit > 0 {
		limiter := ratelimit.New(cfg.RateLimit, cfg.RateLimit)
		clientCfg.HTTPClient = ratelimit.Wrap(&http.Client{}, limiter)
	}

	return &OpenRouter{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Generate implements providers.Provider.
func (o *OpenRouter) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return providercompat.Generate(ctx, o.client, "openrouter", req)
}
