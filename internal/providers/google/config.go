package google

// Config is the per-run configuration for a Gemini client, threaded from the
// Experiment/Arena config payload rather than process environment.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://generativelanguage.googleapis.com/v1beta
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
