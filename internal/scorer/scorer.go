// Package scorer implements the C5 Custom Scorer Runner: evaluating stored
// LLM-judge scorer definitions against {input, output, expected}.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/evalengine/core/internal/metrics/judge"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/store"
)

// DefaultMaxTokens is used when a scorer's params omit max_tokens.
const DefaultMaxTokens = 256

// Result is one scorer's outcome for one test case.
type Result struct {
	ScorerID   string
	ScorerName string
	MetricKey  string
	Label      string
	Score      float64
	Passed     bool
	RawResponse string
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

// RenderTemplate substitutes {{input}}, {{output}}, {{expected}} in
// template, defaulting unknown values to "" and warning (not erroring) on
// unrecognized placeholders.
func RenderTemplate(template string, values map[string]string) string {
	trimmed := strings.TrimSpace(template)
	return placeholderRe.ReplaceAllStringFunc(trimmed, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		slog.Warn("scorer: unknown template placeholder", "placeholder", name)
		return ""
	})
}

// ExtractLabel takes the first non-empty line's
// first whitespace-separated token, uppercased, keeping only letters.
func ExtractLabel(response string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return lettersOnly(strings.ToUpper(fields[0]))
	}
	return ""
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Run evaluates a single scorer definition against one test case's
// {input, output, expected} triple. The judge prompt is built from
// def.Messages; judgeModel names the model on whichever provider the
// caller resolved from def.JudgeModel. A non-nil cache replays the judge's
// raw completion for a (prompt, model) pair already seen this run, so
// repeated fixtures are charged once.
func Run(ctx context.Context, p providers.Provider, def *store.ScorerDefinition, judgeModel, input, output, expected string, cache *judge.Cache) (Result, error) {
	values := map[string]string{"input": input, "output": output, "expected": expected}

	var b strings.Builder
	for _, m := range def.Messages {
		rendered := RenderTemplate(m.Template, values)
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	prompt := b.String()

	out, ok := "", false
	if cache != nil {
		out, ok = cache.Get(prompt, judgeModel)
	}
	if !ok {
		maxTokens := def.MaxTokens
		if maxTokens <= 0 {
			maxTokens = DefaultMaxTokens
		}
		var err error
		out, err = providers.GenerateWithRetry(ctx, p, providers.GenerateRequest{
			Model:       judgeModel,
			Prompt:      prompt,
			MaxTokens:   maxTokens,
			Temperature: 0.0,
		})
		if err != nil {
			return Result{}, fmt.Errorf("scorer %s: %w", def.Name, err)
		}
		if cache != nil {
			cache.Set(prompt, judgeModel, out)
		}
	}

	label := ExtractLabel(out)
	score := def.ChoiceScores[label]
	threshold := def.DefaultThreshold
	if def.PassThreshold != nil {
		threshold = *def.PassThreshold
	}
	if threshold == 0 {
		threshold = 0.5
	}

	return Result{
		ScorerID:    def.ID,
		ScorerName:  def.Name,
		MetricKey:   def.MetricKey,
		Label:       label,
		Score:       score,
		Passed:      score >= threshold,
		RawResponse: out,
	}, nil
}

// Select applies the dispatch filter: the intersection of
// enabled, type=llm, and (if non-empty) selectedScorers. Missing IDs listed
// in selectedScorers are warned and skipped, not treated as an error.
func Select(all []*store.ScorerDefinition, selectedScorers []string) []*store.ScorerDefinition {
	enabled := make(map[string]*store.ScorerDefinition, len(all))
	for _, def := range all {
		if def.Enabled && def.Type == store.ScorerTypeLLM {
			enabled[def.ID] = def
		}
	}

	if len(selectedScorers) == 0 {
		out := make([]*store.ScorerDefinition, 0, len(enabled))
		for _, def := range all {
			if def.Enabled && def.Type == store.ScorerTypeLLM {
				out = append(out, def)
			}
		}
		return out
	}

	out := make([]*store.ScorerDefinition, 0, len(selectedScorers))
	for _, id := range selectedScorers {
		def, ok := enabled[id]
		if !ok {
			slog.Warn("scorer: selected scorer not found or disabled", "scorer_id", id)
			continue
		}
		out = append(out, def)
	}
	return out
}
