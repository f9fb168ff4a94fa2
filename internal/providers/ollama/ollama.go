// Package ollama implements the Provider Adapter for a local Ollama
// server, with model-name validation and a best-effort auto-pull for
// models not yet present locally.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/evalengine/core/internal/providers"
)

// modelNameRe is the Ollama model-name validation rule; names
// that don't match skip the auto-pull step rather than failing outright.
var modelNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)

const maxModelNameLen = 128

// Ollama is the local Ollama provider.
type Ollama struct {
	host       string
	httpClient *http.Client
}

// New creates an Ollama provider, defaulting Host to the local daemon.
func New(cfg Config) (*Ollama, error) {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Ollama{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// isValidModelName reports whether name passes the Ollama
// validation rule: ^[A-Za-z0-9][A-Za-z0-9._:/-]*$ and length <= 128.
func isValidModelName(name string) bool {
	return len(name) > 0 && len(name) <= maxModelNameLen && modelNameRe.MatchString(name)
}

type generateRequest struct {
	Model   string       `json:"model"`
	Prompt  string       `json:"prompt"`
	Stream  bool         `json:"stream"`
	Options *reqOptions  `json:"options,omitempty"`
}

type reqOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// ensureModelPresent attempts a one-shot pull when the model name validates.
// A pull failure is logged and swallowed: generation is left to
// proceed regardless, on the expectation it will surface its own error.
func (o *Ollama) ensureModelPresent(ctx context.Context, model string) {
	if !isValidModelName(model) {
		return
	}

	body, err := json.Marshal(pullRequest{Model: model, Stream: false})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		slog.Warn("ollama: model pull failed", "model", model, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		slog.Warn("ollama: model pull returned non-200", "model", model, "status", resp.StatusCode, "body", string(raw))
	}
}

// Generate implements providers.Provider.
func (o *Ollama) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	o.ensureModelPresent(ctx, req.Model)

	var opts *reqOptions
	if req.Temperature != 0 || req.TopP != 0 {
		opts = &reqOptions{}
		if req.Temperature != 0 {
			t := req.Temperature
			opts.Temperature = &t
		}
		if req.TopP != 0 {
			p := req.TopP
			opts.TopP = &p
		}
	}

	body := generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: opts,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: server returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}
	return strings.TrimSpace(parsed.Response), nil
}
