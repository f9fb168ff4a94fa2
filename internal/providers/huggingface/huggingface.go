// Package huggingface implements the Provider Adapter for HuggingFace's
// hosted Inference API (the "huggingface" provider tag;
// hosted inference stands in for local model loading).
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/providercompat"
)

// HuggingFace is the HF Inference API provider.
type HuggingFace struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a HuggingFace provider. Unlike the other providers, an API
// key is optional: public models on the hosted Inference API accept
// unauthenticated (rate-limited) requests.
func New(cfg Config) (*HuggingFace, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HuggingFace{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}, nil
}

type inferenceRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters inferenceParameters `json:"parameters,omitempty"`
}

type inferenceParameters struct {
	MaxNewTokens int     `json:"max_new_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	TopP         float64 `json:"top_p,omitempty"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Generate implements providers.Provider.
func (h *HuggingFace) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	body := inferenceRequest{
		Inputs: req.Prompt,
		Parameters: inferenceParameters{
			MaxNewTokens: req.MaxTokens,
			Temperature:  req.Temperature,
			TopP:         req.TopP,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("huggingface: encode request: %w", err)
	}

	url := h.baseURL + "/" + req.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("huggingface: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("huggingface: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp inferenceError
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		if resp.StatusCode == http.StatusTooManyRequests || providercompat.IsRateLimitMessage(msg) {
			return "", &providercompat.RateLimitError{Err: fmt.Errorf("huggingface: %s", msg)}
		}
		return "", fmt.Errorf("huggingface: %s", msg)
	}

	var results []inferenceResult
	if err := json.Unmarshal(raw, &results); err != nil {
		var single inferenceResult
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return "", fmt.Errorf("huggingface: decode response: %w", err)
		}
		return strings.TrimSpace(single.GeneratedText), nil
	}
	if len(results) == 0 {
		return "", nil
	}
	return strings.TrimSpace(results[0].GeneratedText), nil
}
