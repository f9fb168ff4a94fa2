package openrouter

import (
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/registry"
)

func init() {
	providers.Register("openrouter", func(cfg registry.Config) (providers.Provider, error) {
		return New(Config{
			APIKey:    registry.GetString(cfg, "api_key", ""),
			BaseURL:   registry.GetString(cfg, "base_url", ""),
			RateLimit: registry.GetFloat64(cfg, "rate_limit", 0),
		})
	})
}
