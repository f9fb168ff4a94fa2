package huggingface

// Config is the per-run configuration for the HuggingFace Inference API.
type Config struct {
	APIKey  string
	BaseURL string // defaults to https://api-inference.huggingface.co/models
}

const defaultBaseURL = "https://api-inference.huggingface.co/models"
