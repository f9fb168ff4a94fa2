// Package judge implements the provider-agnostic "G-Eval-like" scoring
// procedure: a rubric-bearing prompt sent to a judge LLM, parsed into a
// score in [0,1] with a best-effort regex fallback when the response
// isn't valid JSON.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/evalengine/core/internal/providers"
)

// Verdict is what a judge returns for one prompt: a score (nil when the
// response could not be parsed) and a reason. The dispatcher derives the
// pass flag from the score and the metric's threshold.
type Verdict struct {
	Score  *float64
	Reason string
}

// DefaultMaxTokens bounds a judge call's output when the caller doesn't
// specify one (mirrors G_EVAL_MAX_TOKENS's deployment default).
const DefaultMaxTokens = 512

var firstNumberRe = regexp.MustCompile(`0?\.\d+|\b[01](?:\.0+)?\b`)

type rawVerdict struct {
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// Rubric builds the judge prompt.
func Rubric(instruction, input, modelAnswer, expected string) string {
	var b strings.Builder
	b.WriteString("You are an impartial judge. ")
	b.WriteString(instruction)
	b.WriteString("\n\nInput:\n")
	b.WriteString(input)
	b.WriteString("\n\nModel Answer:\n")
	b.WriteString(modelAnswer)
	if expected != "" {
		b.WriteString("\nExpected (reference):\n")
		b.WriteString(expected)
	}
	b.WriteString("\n\nRespond with ONLY a raw JSON object, no markdown fencing, no commentary. ")
	b.WriteString(`Format: {"score": 0.0-1.0, "reason": "..."}`)
	return b.String()
}

// Evaluate sends prompt to p and parses the resulting score:
// JSON first, then a regex number fallback, then a null verdict.
// Temperature is always 0.0 for judge calls.
func Evaluate(ctx context.Context, p providers.Provider, model, prompt string, maxTokens int) (Verdict, error) {
	return EvaluateCached(ctx, p, model, prompt, maxTokens, nil)
}

// EvaluateCached behaves like Evaluate but consults cache first (when
// non-nil), so repeated (prompt, model) pairs within a run don't re-charge
// the judge model.
func EvaluateCached(ctx context.Context, p providers.Provider, model, prompt string, maxTokens int, cache *Cache) (Verdict, error) {
	if cache != nil {
		if raw, ok := cache.Get(prompt, model); ok {
			return parseVerdict(raw), nil
		}
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	out, err := providers.GenerateWithRetry(ctx, p, providers.GenerateRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge: %w", err)
	}
	if cache != nil {
		cache.Set(prompt, model, out)
	}
	return parseVerdict(out), nil
}

func parseVerdict(raw string) Verdict {
	cleaned := stripFencing(raw)

	var rv rawVerdict
	if err := json.Unmarshal([]byte(cleaned), &rv); err == nil && rv.Score != nil {
		score := clamp(*rv.Score)
		return Verdict{Score: &score, Reason: rv.Reason}
	}

	if m := firstNumberRe.FindString(cleaned); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			score := clamp(v)
			return Verdict{Score: &score, Reason: "parsed from non-JSON response"}
		}
	}

	return Verdict{Score: nil, Reason: "Unable to parse judge response"}
}

func stripFencing(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
