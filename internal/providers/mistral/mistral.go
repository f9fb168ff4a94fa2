// Package mistral implements the Provider Adapter for Mistral AI. Mistral's
// chat-completions endpoint is OpenAI-compatible in shape, but some models
// return message content as a list of typed blocks rather than a plain
// string, which go-openai cannot unmarshal, so this provider posts raw
// JSON and decodes the response itself.
package mistral

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

// Mistral is the Mistral chat-completions provider.
type Mistral struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Mistral provider. An empty APIKey is a configuration error.
func New(cfg Config) (*Mistral, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: mistral", providers.ErrMissingAPIKey)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Mistral{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// extractContent handles both Mistral's plain-string content and its
// list-of-blocks content: when raw decodes as an array, the `text` fields
// are concatenated in order.
func extractContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", fmt.Errorf("mistral: unrecognized content shape: %w", err)
	}
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text)
	}
	return sb.String(), nil
}

// Generate implements providers.Provider.
func (m *Mistral) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("mistral: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mistral: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mistral: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mistral: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("mistral: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		if resp.StatusCode == http.StatusTooManyRequests || providercompat.IsRateLimitMessage(msg) {
			return "", &providercompat.RateLimitError{Err: fmt.Errorf("mistral: %s", msg)}
		}
		return "", fmt.Errorf("mistral: %s", msg)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}
	text, err := extractContent(parsed.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
