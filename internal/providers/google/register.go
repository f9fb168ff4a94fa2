package google

import (
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/registry"
)

func init() {
	providers.Register("google", func(cfg registry.Config) (providers.Provider, error) {
		return New(Config{
			APIKey:  registry.GetString(cfg, "api_key", ""),
			BaseURL: registry.GetString(cfg, "base_url", ""),
		})
	})
}
