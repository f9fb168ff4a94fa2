package customapi

// Config is the per-run configuration for a generic OpenAI-compatible
// endpoint: any deployment that speaks the OpenAI chat-completions wire
// format but isn't one of the named providers (self-hosted gateways,
// enterprise proxies, etc).
type Config struct {
	APIKey  string
	BaseURL string // required: no sensible default for a custom endpoint
}
