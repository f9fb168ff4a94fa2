// Package customapi implements the Provider Adapter for a generic
// OpenAI-compatible endpoint, for deployments that speak OpenAI's wire
// format under a custom base URL.
package customapi

import (
	"context"
	"fmt"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
	goopenai "github.com/sashabaranov/go-openai"
)

// CustomAPI is the generic OpenAI-compatible provider.
type CustomAPI struct {
	client *goopenai.Client
}

// New creates a custom-API provider. BaseURL is required: there is no
// sensible default endpoint for an arbitrary deployment.
func New(cfg Config) (*CustomAPI, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("custom_api provider requires base_url")
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	return &CustomAPI{client: goopenai.NewClientWithConfig(clientCfg)}, nil
}

// Generate implements providers.Provider.
func (c *CustomAPI) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	return providercompat.Generate(ctx, c.client, "custom_api", req)
}
