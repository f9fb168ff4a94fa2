// Package xai implements the Provider Adapter for xAI's Grok models, which
// expose an OpenAI-compatible chat-completions endpoint.
package xai

import (
	"context"
	"fmt"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
	goopenai "github.com/sashabaranov/go-openai"
)

// XAI is the xAI chat-completions provider.
type XAI struct {
	client *goopenai.Client
}

// New creates an xAI provider. An empty APIKey is a configuration error.
func New(cfg Config) (*XAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: xai", providers.ErrMissingAPIKey)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	return &XAI{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Generate implements providers.Provider.
func (x *XAI) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return providercompat.Generate(ctx, x.client, "xai", req)
}
