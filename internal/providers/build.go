package providers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evalengine/core/internal/registry"
)

// ModelSpec describes how to reach the target or judge LLM for a single
// call, threaded explicitly through the orchestrator rather than read from
// process environment (see DESIGN.md's credential-threading note).
type ModelSpec struct {
	Provider  string
	APIKey    string
	BaseURL   string
	RateLimit float64
}

// providerRegistry maps each normalized provider tag to a factory building
// that backend from a registry.Config of api_key/base_url/rate_limit.
// Provider packages self-register in their init(); importers pull them in
// with blank imports (see cmd/evalengine).
var providerRegistry = registry.New[Provider]("providers")

// Register adds a provider factory under the given normalized tag. Called
// from provider package init() functions.
func Register(name string, factory func(registry.Config) (Provider, error)) {
	providerRegistry.Register(name, factory)
}

// Build constructs a Provider for the named provider tag. Tags match the
// experiment/arena config payload's provider/accessMethod
// values: openai, anthropic, google, xai, mistral, ollama, openrouter,
// huggingface, local (alias for ollama), custom_api.
func Build(spec ModelSpec) (Provider, error) {
	p, err := providerRegistry.Create(normalizeTag(spec.Provider), registry.Config{
		"api_key":    spec.APIKey,
		"base_url":   spec.BaseURL,
		"rate_limit": spec.RateLimit,
	})
	if errors.Is(err, registry.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, spec.Provider)
	}
	return p, err
}

// normalizeTag lowercases a provider tag and folds the accepted aliases onto
// their canonical registry names.
func normalizeTag(provider string) string {
	switch tag := strings.ToLower(provider); tag {
	case "gemini":
		return "google"
	case "grok":
		return "xai"
	case "local":
		return "ollama"
	case "hf":
		return "huggingface"
	case "custom":
		return "custom_api"
	default:
		return tag
	}
}

// List returns the normalized provider tags currently registered, sorted
// alphabetically, for an (out-of-scope) HTTP catalog layer.
func List() []string {
	return providerRegistry.List()
}

// InferProviderFromModelName infers a provider tag from a model name
// substring: contains
// "claude" -> anthropic; "gemini" -> google; "mistral"/"magistral" ->
// mistral; "grok" -> xai; else openai.
func InferProviderFromModelName(model string) string {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "claude"):
		return "anthropic"
	case strings.Contains(lower, "gemini"):
		return "google"
	case strings.Contains(lower, "mistral"), strings.Contains(lower, "magistral"):
		return "mistral"
	case strings.Contains(lower, "grok"):
		return "xai"
	default:
		return "openai"
	}
}
