package anthropic

// Config is the per-run configuration for an Anthropic client, threaded from
// the Experiment/Arena config payload rather than process environment.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://api.anthropic.com/v1
}

const (
	defaultBaseURL  = "https://api.anthropic.com/v1"
	defaultAPIVersion = "2023-06-01"
	defaultMaxTokens  = 150
)
