// Package providercompat provides shared helpers for the OpenAI-compatible
// providers: OpenAI itself, xAI, OpenRouter, and the generic
// custom-API pass-through. Each wraps goopenai.Client but needs the same
// model-prefix rules and error classification, so it lives here once.
// The raw-HTTP providers (Anthropic, Google, Mistral, HuggingFace) use only
// the rate-limit helpers.
package providercompat

import (
	"context"
	"fmt"
	"strings"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/ratelimit"
	goopenai "github.com/sashabaranov/go-openai"
)

// RateLimitError, IsRateLimitError, and IsRateLimitMessage are re-exported
// from the ratelimit package, which has no dependency on providers, so that
// providers/retry.go can depend on the classifier without creating an
// import cycle through providercompat.
type RateLimitError = ratelimit.RateLimitError

var (
	IsRateLimitError   = ratelimit.IsRateLimitError
	IsRateLimitMessage = ratelimit.IsRateLimitMessage
)

// newerCompletionTokenPrefixes is the set of OpenAI chat family name
// prefixes that require max_completion_tokens instead of max_tokens.
// This list must be updated by
// hand as OpenAI ships new families.
var newerCompletionTokenPrefixes = []string{"o1", "o3", "gpt-4o", "gpt-4.5", "gpt-5"}

// UsesMaxCompletionTokens reports whether model belongs to a newer OpenAI
// chat family that takes max_completion_tokens rather than max_tokens.
func UsesMaxCompletionTokens(model string) bool {
	for _, p := range newerCompletionTokenPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// IsOSeriesReasoningModel reports whether model is one of the "o-series"
// reasoning models (names starting with "o", e.g. o1, o3-mini) that accept
// only temperature and silently drop top_p.
func IsOSeriesReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o")
}

// BuildChatRequest constructs a ChatCompletionRequest honoring the
// max_tokens/max_completion_tokens split and the o-series top_p omission.
func BuildChatRequest(model, prompt string, maxTokens int, temperature, topP float64) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}

	if maxTokens > 0 {
		if UsesMaxCompletionTokens(model) {
			req.MaxCompletionTokens = maxTokens
		} else {
			req.MaxTokens = maxTokens
		}
	}

	if temperature > 0 {
		req.Temperature = float32(temperature)
	}
	if topP > 0 && !IsOSeriesReasoningModel(model) {
		req.TopP = float32(topP)
	}

	return req
}

// Generate performs a standard OpenAI-compatible chat completion and
// extracts the first choice's text, trimmed of surrounding whitespace.
func Generate(ctx context.Context, client *goopenai.Client, providerName string, req providers.GenerateRequest) (string, error) {
	chatReq := BuildChatRequest(req.Model, req.Prompt, req.MaxTokens, req.Temperature, req.TopP)

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", WrapError(providerName, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// WrapError wraps OpenAI-compatible API errors with a provider-specific
// prefix, returning a *RateLimitError for HTTP 429 so retry.Do classifies
// it correctly.
func WrapError(providerName string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *goopenai.APIError
	if asAPIError(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return &RateLimitError{Err: fmt.Errorf("%s: rate limit exceeded: %w", providerName, err)}
		}
		return fmt.Errorf("%s: API error (%d): %w", providerName, apiErr.HTTPStatusCode, err)
	}
	if IsRateLimitMessage(err.Error()) {
		return &RateLimitError{Err: fmt.Errorf("%s: %w", providerName, err)}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}

func asAPIError(err error, target **goopenai.APIError) bool {
	if apiErr, ok := err.(*goopenai.APIError); ok {
		*target = apiErr
		return true
	}
	return false
}
