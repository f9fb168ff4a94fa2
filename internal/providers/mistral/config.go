package mistral

// Config is the per-run configuration for a Mistral client.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://api.mistral.ai/v1
}

const defaultBaseURL = "https://api.mistral.ai/v1"
