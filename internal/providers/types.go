// Package providers defines the provider adapter contract: a
// single generate(model, prompt, params) -> text operation implemented by
// nine provider variants as tagged structs, never an inheritance chain.
package providers

import "context"

// GenerateRequest carries everything a provider needs for one completion.
// Callers pass Temperature and TopP through without range checks (judge
// calls send Temperature 0); providers apply their own
// mutual-exclusion / name-prefix quirks on top.
type GenerateRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64 // 0 means "not set"
}

// Provider is the uniform interface every LLM backend implements.
// Generate never returns a nil string pointer; an empty completion is
// returned as "", and callers (the test case builder) decide retry policy.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Func adapts a plain function to the Provider interface, for tests and
// small inline providers.
type Func func(ctx context.Context, req GenerateRequest) (string, error)

func (f Func) Generate(ctx context.Context, req GenerateRequest) (string, error) { return f(ctx, req) }
