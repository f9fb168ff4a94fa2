package openrouter

// Config is the per-run configuration for an OpenRouter client. RateLimit,
// when > 0, is the steady-state requests/second cap (OpenRouter enforces a
// shared limit across its routed models, so callers may need to throttle).
type Config struct {
	APIKey    string
	BaseURL   string
	RateLimit float64
}

const defaultBaseURL = "https://openrouter.ai/api/v1"
