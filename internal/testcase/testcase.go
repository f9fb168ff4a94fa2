// Package testcase implements the C3 Test Case Builder: turning dataset
// samples into sample.TestCase values, generating assistant turns via the
// provider adapter where the sample doesn't already carry them.
package testcase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evalengine/core/internal/concurrency"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/sample"
	"github.com/evalengine/core/internal/store"
)

// retryTemperature is the fixed temperature used for a single-turn retry
// after an empty generation.
const retryTemperature = 0.2

// multiTurnMaxTokens and multiTurnTemperature are fixed for conversation replay.
const (
	multiTurnMaxTokens   = 1024
	multiTurnTemperature = 0.7
)

// simulatorHistoryWindow bounds the context passed to a ConversationSimulator
// callback.
const simulatorHistoryWindow = 6

// ErrEmptyOutput marks a single-turn sample whose generation remained empty
// after the one allowed retry.
var ErrEmptyOutput = fmt.Errorf("empty_output")

// Result pairs a materialized test case with the log it should be merged
// back into, or an error if the sample was excluded from scoring.
type Result struct {
	TestCase sample.TestCase
	Log      *store.EvaluationLog
	Err      error
}

// Builder generates assistant turns and produces EvaluationLogs.
type Builder struct {
	Provider    providers.Provider
	Model       string
	MaxTokens   int
	Temperature float64 // single-turn generation temperature; retry always uses 0.2
}

// BuildSingleTurn implements the single-turn path. On empty
// output after the retry, Result.Err is ErrEmptyOutput and Result.Log
// carries an "error" status log; no TestCase is produced.
func (b *Builder) BuildSingleTurn(ctx context.Context, s sample.Sample) Result {
	temp := b.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	started := time.Now()
	req := providers.GenerateRequest{Model: b.Model, Prompt: s.Prompt, MaxTokens: b.MaxTokens, Temperature: temp}
	out, err := providers.GenerateWithRetry(ctx, b.Provider, req)
	if err == nil && strings.TrimSpace(out) == "" {
		retryReq := req
		retryReq.Temperature = retryTemperature
		out, err = providers.GenerateWithRetry(ctx, b.Provider, retryReq)
	}

	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyOutput
	}
	if err != nil {
		msg := "empty_output"
		if err != ErrEmptyOutput {
			msg = err.Error()
		}
		return Result{
			Err: err,
			Log: &store.EvaluationLog{
				InputText:    s.Prompt,
				ModelName:    b.Model,
				Status:       store.LogError,
				ErrorMessage: msg,
			},
		}
	}

	trimmed := strings.TrimSpace(out)
	tc := sample.TestCase{
		Kind:           sample.KindSingleTurn,
		Input:          s.Prompt,
		ActualOutput:   trimmed,
		ExpectedOutput: s.ExpectedOutput,
	}
	log := &store.EvaluationLog{
		InputText:  s.Prompt,
		OutputText: trimmed,
		ModelName:  b.Model,
		LatencyMS:  time.Since(started).Milliseconds(),
		TokenCount: wordCount(trimmed),
		Status:     store.LogSuccess,
	}
	return Result{TestCase: tc, Log: log}
}

// BuildSingleTurnBatch fans the single-turn path out across samples up to
// opts.Concurrency, writing results back in dataset order.
func (b *Builder) BuildSingleTurnBatch(ctx context.Context, samples []sample.Sample, opts concurrency.Options) []Result {
	results, _ := concurrency.Run(ctx, samples, opts, func(ctx context.Context, s sample.Sample, _ int) (Result, error) {
		return b.BuildSingleTurn(ctx, s), nil
	})
	return results
}

// replayPrompt builds the turn-k prompt with the full prior history.
func replayPrompt(history string, userMsg string, firstTurn bool) string {
	if firstTurn {
		return fmt.Sprintf("You are a helpful assistant. Respond to the user.\n\nUser: %s\n\nAssistant:", userMsg)
	}
	return fmt.Sprintf("You are a helpful assistant. Continue this conversation.\n%sUser: %s\n\nAssistant:", history, userMsg)
}

// BuildMultiTurn implements the multi-turn replay path: one
// EvaluationLog per conversation, not per turn.
func (b *Builder) BuildMultiTurn(ctx context.Context, s sample.Sample) Result {
	started := time.Now()
	conv := sample.NewConversation()
	userTurns := userMessages(s.InputTurns)

	for i, userMsg := range userTurns {
		prompt := replayPrompt(conv.RenderHistory(), userMsg.Content, i == 0)
		req := providers.GenerateRequest{Model: b.Model, Prompt: prompt, MaxTokens: multiTurnMaxTokens, Temperature: multiTurnTemperature}
		out, err := providers.GenerateWithRetry(ctx, b.Provider, req)

		var assistantText string
		switch {
		case err != nil:
			msg := err.Error()
			if len(msg) > 100 {
				msg = msg[:100]
			}
			assistantText = fmt.Sprintf("[Generation error: %s]", msg)
		default:
			assistantText = strings.TrimPrefix(strings.TrimSpace(out), "Assistant:")
			assistantText = strings.TrimSpace(assistantText)
			if assistantText == "" {
				assistantText = "[Model returned empty response]"
			}
		}

		conv.AppendUser(userMsg.Content)
		conv.AppendAssistant(assistantText)
	}

	tc := sample.TestCase{
		Kind:            sample.KindConversational,
		Turns:           conv.Turns,
		Scenario:        s.Scenario,
		ExpectedOutcome: s.ExpectedOutcome,
	}

	log := &store.EvaluationLog{
		InputText:  renderTurnsInput(s.InputTurns),
		OutputText: renderTurnsOutput(conv.Turns),
		ModelName:  b.Model,
		LatencyMS:  time.Since(started).Milliseconds(),
		Status:     store.LogSuccess,
		Metadata: map[string]any{
			"is_conversational":       true,
			"scenario":                s.Scenario,
			"turns":                   conv.Turns,
			"expected_assistant_turns": s.InputTurns,
			"turn_count":              conv.TurnCount(),
		},
	}
	return Result{TestCase: tc, Log: log}
}

// ConversationSimulator drives a simulated-conversation scenario, invoked
// once per exchange with the scenario, the bounded recent history, and a
// thread identifier; it returns the next user message, or done=true to end
// the scenario.
type ConversationSimulator interface {
	NextUserTurn(ctx context.Context, golden sample.ConversationalGolden, history []sample.Message, threadID string) (string, bool, error)
}

// BuildSimulated implements the simulated-conversation path,
// driving sim for at most maxTurns total turns per scenario.
func (b *Builder) BuildSimulated(ctx context.Context, golden sample.ConversationalGolden, sim ConversationSimulator, maxTurns int, threadID string) Result {
	conv := sample.NewConversation()

	// Each exchange adds a user turn and an assistant turn.
	for conv.TurnCount()+2 <= maxTurns {
		history := conv.LastN(simulatorHistoryWindow)
		userMsg, done, err := sim.NextUserTurn(ctx, golden, history, threadID)
		if err != nil || done {
			break
		}
		conv.AppendUser(userMsg)

		req := providers.GenerateRequest{Model: b.Model, Prompt: renderSimulatorPrompt(history, userMsg), MaxTokens: multiTurnMaxTokens, Temperature: multiTurnTemperature}
		out, genErr := providers.GenerateWithRetry(ctx, b.Provider, req)
		assistantText := strings.TrimSpace(out)
		if genErr != nil || assistantText == "" {
			assistantText = "[Model returned empty response]"
		}
		conv.AppendAssistant(assistantText)
	}

	tc := sample.TestCase{
		Kind:            sample.KindConversational,
		Turns:           conv.Turns,
		Scenario:        golden.Scenario,
		ExpectedOutcome: golden.ExpectedOutcome,
	}
	log := &store.EvaluationLog{
		InputText:  golden.Scenario,
		OutputText: renderTurnsOutput(conv.Turns),
		ModelName:  b.Model,
		Status:     store.LogSuccess,
		Metadata: map[string]any{
			"is_conversational": true,
			"scenario":          golden.Scenario,
			"turns":             conv.Turns,
			"turn_count":        conv.TurnCount(),
		},
	}
	return Result{TestCase: tc, Log: log}
}

func renderSimulatorPrompt(history []sample.Message, userMsg string) string {
	var b strings.Builder
	for _, m := range history {
		switch m.Role {
		case sample.RoleUser:
			b.WriteString("User: ")
		case sample.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(userMsg)
	b.WriteString("\n\nAssistant:")
	return b.String()
}

func userMessages(turns []sample.Message) []sample.Message {
	out := make([]sample.Message, 0, len(turns))
	for _, t := range turns {
		if t.Role == sample.RoleUser {
			out = append(out, t)
		}
	}
	return out
}

func renderTurnsInput(turns []sample.Message) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Role == sample.RoleUser {
			b.WriteString(t.Content)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func renderTurnsOutput(turns []sample.Message) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Role == sample.RoleAssistant {
			b.WriteString(t.Content)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
