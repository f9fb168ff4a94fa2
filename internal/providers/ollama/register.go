package ollama

import (
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/registry"
)

func init() {
	providers.Register("ollama", func(cfg registry.Config) (providers.Provider, error) {
		return New(Config{
			Host: registry.GetString(cfg, "base_url", ""),
		})
	})
}
