// Package openai implements the Provider Adapter for OpenAI chat models,
// including the o-series reasoning family and the newer
// max_completion_tokens-based families.
package openai

import (
	"context"
	"fmt"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI is the OpenAI chat-completions provider.
type OpenAI struct {
	client *goopenai.Client
}

// New creates an OpenAI provider. An empty APIKey is a configuration error:
// the engine must fail fast rather than attempt generation.
func New(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai", providers.ErrMissingAPIKey)
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Generate implements providers.Provider.
func (g *OpenAI) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return providercompat.Generate(ctx, g.client, "openai", req)
}
