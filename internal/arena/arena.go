// Package arena implements the C7 Arena Engine: multi-contestant
// comparisons where each prompt is fanned out across every contestant and a
// judge model scores the responses under a structured rubric.
package arena

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/evalengine/core/internal/concurrency"
	"github.com/evalengine/core/internal/dataset"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/store"
)

// contestantMaxTokens is the fixed output budget for contestant calls.
const contestantMaxTokens = 1024

// Engine drives one arena comparison at a time, sharing only the Store
// with concurrently running comparisons.
type Engine struct {
	Store store.Store

	// APIKeys maps provider tag -> API key for both contestants and the
	// judge, threaded per-run rather than via process environment.
	APIKeys map[string]string

	// BuildProvider resolves a ModelSpec to a Provider. Defaults to
	// providers.Build; tests substitute fakes here.
	BuildProvider func(providers.ModelSpec) (providers.Provider, error)

	// Concurrency bounds the per-contestant fan-out within one prompt.
	Concurrency concurrency.Options
}

func (e *Engine) buildProvider(spec providers.ModelSpec) (providers.Provider, error) {
	if e.BuildProvider != nil {
		return e.BuildProvider(spec)
	}
	return providers.Build(spec)
}

// Run executes one comparison end to end. Run-time failures finalize the
// comparison as failed; only infrastructure errors while marking it running
// or during finalization are returned to the caller.
func (e *Engine) Run(ctx context.Context, tenant string, arena *store.ArenaComparison) error {
	slog.Info("arena: comparison starting", "tenant", tenant, "comparison_id", arena.ID, "contestants", len(arena.Contestants))

	arena.Status = store.ArenaRunning
	if err := e.Store.UpdateArenaComparison(ctx, tenant, arena); err != nil {
		return fmt.Errorf("arena: transition to running: %w", err)
	}

	results, err := e.execute(ctx, tenant, arena)
	if err != nil {
		slog.Error("arena: comparison failed", "tenant", tenant, "comparison_id", arena.ID, "error", err)
		arena.Status = store.ArenaFailed
		arena.ErrorMessage = err.Error()
		finalCtx := context.WithoutCancel(ctx)
		if finalErr := e.Store.UpdateArenaComparison(finalCtx, tenant, arena); finalErr != nil {
			return fmt.Errorf("arena: finalize failed status: %w (original error: %s)", finalErr, err)
		}
		return nil
	}

	arena.Status = store.ArenaCompleted
	arena.Progress = "completed"
	arena.Results = results
	if err := e.Store.UpdateArenaComparison(ctx, tenant, arena); err != nil {
		return fmt.Errorf("arena: finalize completed status: %w", err)
	}
	slog.Info("arena: comparison completed", "tenant", tenant, "comparison_id", arena.ID, "winner", results.OverallWinner)
	return nil
}

func (e *Engine) execute(ctx context.Context, tenant string, arena *store.ArenaComparison) (*store.ArenaResults, error) {
	if len(arena.Contestants) < 2 {
		return nil, fmt.Errorf("arena needs at least 2 contestants, got %d", len(arena.Contestants))
	}

	ds, err := dataset.Load(dataset.Reference{Path: arena.DatasetPath})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	prompts := dataset.CapForArena(ds.Samples)
	if len(prompts) == 0 {
		return nil, fmt.Errorf("dataset has no prompts")
	}

	judgeTag := providers.InferProviderFromModelName(arena.JudgeModel)
	judgeProvider, err := e.buildProvider(providers.ModelSpec{
		Provider: judgeTag,
		APIKey:   e.APIKeys[judgeTag],
	})
	if err != nil {
		return nil, fmt.Errorf("build judge provider: %w", err)
	}

	names := contestantNames(arena.Contestants)
	winCounts := make(map[string]int, len(names))
	for _, name := range names {
		winCounts[name] = 0
	}

	var detailed []store.ArenaPromptResult
	for i, prompt := range prompts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		outputs := e.fanOutContestants(ctx, arena.Contestants, prompt.Prompt)
		verdict := e.judgePrompt(ctx, judgeProvider, arena, prompt.Prompt, outputs, names)

		if verdict.Winner != "" && verdict.Winner != "TIE" {
			winCounts[verdict.Winner]++
		}

		scores := make([]store.ContestantScore, len(arena.Contestants))
		for j, c := range arena.Contestants {
			scores[j] = store.ContestantScore{
				Name:   c.Name,
				Output: outputs[j],
				Scores: verdict.Scores[c.Name],
			}
		}
		detailed = append(detailed, store.ArenaPromptResult{
			TestCaseIndex: i,
			Input:         prompt.Prompt,
			Winner:        verdict.Winner,
			Reason:        verdict.Reasoning,
			Contestants:   scores,
			Criteria:      arena.MetricName,
		})

		arena.Progress = fmt.Sprintf("Processing prompt %d/%d", i+1, len(prompts))
		if err := e.Store.UpdateArenaComparison(ctx, tenant, arena); err != nil {
			slog.Warn("arena: progress update failed", "tenant", tenant, "comparison_id", arena.ID, "error", err)
		}
	}

	return &store.ArenaResults{
		WinCounts:       winCounts,
		OverallWinner:   overallWinner(winCounts),
		DetailedResults: detailed,
	}, nil
}

// fanOutContestants generates every contestant's response for one prompt
// concurrently, in contestant order. A contestant's failure becomes an
// "Error: ..." output rather than failing the prompt.
func (e *Engine) fanOutContestants(ctx context.Context, contestants []store.Contestant, prompt string) []string {
	outputs, _ := concurrency.Run(ctx, contestants, e.Concurrency, func(ctx context.Context, c store.Contestant, _ int) (string, error) {
		tag := strings.ToLower(c.ModelSpec.Provider)
		apiKey := c.ModelSpec.APIKey
		if apiKey == "" {
			apiKey = e.APIKeys[tag]
		}
		p, err := e.buildProvider(providers.ModelSpec{
			Provider: c.ModelSpec.Provider,
			APIKey:   apiKey,
			BaseURL:  c.ModelSpec.EndpointURL,
		})
		if err != nil {
			return fmt.Sprintf("Error: %s", err), nil
		}
		out, err := providers.GenerateWithRetry(ctx, p, providers.GenerateRequest{
			Model:     c.ModelSpec.Name,
			Prompt:    prompt,
			MaxTokens: contestantMaxTokens,
		})
		if err != nil {
			return fmt.Sprintf("Error: %s", err), nil
		}
		return out, nil
	})
	return outputs
}

func (e *Engine) judgePrompt(ctx context.Context, judge providers.Provider, arena *store.ArenaComparison, prompt string, outputs []string, names []string) judgeVerdict {
	judgePrompt := buildJudgePrompt(arena, prompt, outputs)
	raw, err := providers.GenerateWithRetry(ctx, judge, providers.GenerateRequest{
		Model:     arena.JudgeModel,
		Prompt:    judgePrompt,
		MaxTokens: contestantMaxTokens,
	})
	if err != nil {
		slog.Warn("arena: judge call failed", "comparison_id", arena.ID, "error", err)
		return judgeVerdict{Reasoning: fmt.Sprintf("judge error: %s", err)}
	}
	return parseJudgeResponse(raw, names)
}

// buildJudgePrompt renders the structured scoring prompt: the user question,
// every contestant's labeled response, the individual criteria, and the
// strict JSON output instruction.
func buildJudgePrompt(arena *store.ArenaComparison, prompt string, outputs []string) string {
	var b strings.Builder
	b.WriteString("You are an impartial judge comparing AI model responses.\n\n")
	b.WriteString("User question:\n")
	b.WriteString(prompt)
	b.WriteString("\n\n")
	for i, c := range arena.Contestants {
		fmt.Fprintf(&b, "Response from %s:\n%s\n\n", c.Name, outputs[i])
	}
	b.WriteString("Evaluation criteria: ")
	b.WriteString(arena.MetricName)
	if arena.Criteria != "" {
		b.WriteString("\nRubric: ")
		b.WriteString(arena.Criteria)
	}
	b.WriteString("\n\nScore each contestant on each criterion from 0 to 10 and pick the single best response.\n")
	b.WriteString("Respond with ONLY a raw JSON object in this exact format:\n")
	b.WriteString("{\n")
	b.WriteString(`  "scores": { "<contestantName>": { "<criterion>": 0 } },` + "\n")
	b.WriteString(`  "winner": "<name or TIE>",` + "\n")
	b.WriteString(`  "reasoning": "<brief>"` + "\n")
	b.WriteString("}")
	return b.String()
}

func contestantNames(contestants []store.Contestant) []string {
	names := make([]string, len(contestants))
	for i, c := range contestants {
		names[i] = c.Name
	}
	return names
}

// overallWinner returns the contestant with the most wins, or the literal
// "Tie: A, B" form when several share the max, or "" when nobody won
// anything.
func overallWinner(winCounts map[string]int) string {
	maxWins := 0
	for _, n := range winCounts {
		if n > maxWins {
			maxWins = n
		}
	}
	if maxWins == 0 {
		return ""
	}

	var leaders []string
	for name, n := range winCounts {
		if n == maxWins {
			leaders = append(leaders, name)
		}
	}
	sort.Strings(leaders)
	if len(leaders) == 1 {
		return leaders[0]
	}
	return "Tie: " + strings.Join(leaders, ", ")
}
