package orchestrator_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/evalengine/core/internal/orchestrator"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/store"
	"github.com/evalengine/core/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider answers judge prompts with a fixed verdict and target
// prompts via respond, recording every request.
type scriptedProvider struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	judge   string
	calls   []providers.GenerateRequest
}

func (p *scriptedProvider) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	if strings.Contains(req.Prompt, "impartial judge") {
		return p.judge, nil
	}
	return p.respond(req.Prompt)
}

func (p *scriptedProvider) requests() []providers.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]providers.GenerateRequest(nil), p.calls...)
}

func newOrchestrator(s store.Store, p providers.Provider) *orchestrator.Orchestrator {
	return &orchestrator.Orchestrator{
		Store:         s,
		BuildProvider: func(providers.ModelSpec) (providers.Provider, error) { return p, nil },
	}
}

func newExperiment(cfg store.ExperimentConfig) *store.Experiment {
	cfg.Model = store.ModelSpec{Name: "test-model", Provider: "openai"}
	cfg.JudgeLLM = store.ModelSpec{Name: "judge-model", Provider: "openai"}
	return &store.Experiment{ID: "exp1", ProjectID: "p1", Name: "run", Config: cfg}
}

func TestSingleTurnBuiltinMetrics(t *testing.T) {
	s := memory.New()
	p := &scriptedProvider{
		judge: `{"score": 0.9, "reason": "good"}`,
		respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "2+2") {
				return "4", nil
			}
			return "Paris", nil
		},
	}
	exp := newExperiment(store.ExperimentConfig{
		EvaluationMode: store.ModeStandard,
		DatasetPrompts: []string{
			`{"prompt": "What is 2+2?", "expected_output": "4"}`,
			`{"prompt": "Capital of France?", "expected_output": "Paris"}`,
		},
		Metrics: map[string]bool{"answerRelevancy": true, "correctness": true},
	})
	ctx := context.Background()
	require.NoError(t, s.CreateExperiment(ctx, "t", exp))

	require.NoError(t, newOrchestrator(s, p).Run(ctx, "t", exp))

	got, err := s.GetExperimentByID(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	require.NotNil(t, got.Results)
	assert.Equal(t, 2, got.Results.TotalPrompts)
	assert.InDelta(t, 0.9, got.Results.AvgScores["answerRelevancy"], 1e-9)
	assert.InDelta(t, 0.9, got.Results.AvgScores["correctness"], 1e-9)

	logs, err := s.GetLogs(ctx, "t", "exp1", store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, store.LogSuccess, logs[0].Status)
	assert.Equal(t, "What is 2+2?", logs[0].InputText)
	assert.Equal(t, "4", logs[0].OutputText)
	assert.Equal(t, "Capital of France?", logs[1].InputText)

	// Metric scores were merged into each log's metadata post-hoc.
	scores, ok := logs[0].Metadata["metric_scores"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, scores, "answerRelevancy")

	// Job status mirror followed the lifecycle.
	status, err := s.GetJobStatus(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
}

func TestSingleTurnEmptyRetryPath(t *testing.T) {
	s := memory.New()
	p := &scriptedProvider{
		judge:   `{"score": 1.0, "reason": ""}`,
		respond: func(string) (string, error) { return "", nil },
	}
	exp := newExperiment(store.ExperimentConfig{
		EvaluationMode: store.ModeStandard,
		DatasetPrompts: []string{`{"prompt": "Anything?"}`},
		Metrics:        map[string]bool{"correctness": true},
	})
	ctx := context.Background()
	require.NoError(t, s.CreateExperiment(ctx, "t", exp))

	require.NoError(t, newOrchestrator(s, p).Run(ctx, "t", exp))

	got, err := s.GetExperimentByID(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	assert.Equal(t, 0, got.Results.TotalPrompts)

	logs, err := s.GetLogs(ctx, "t", "exp1", store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, store.LogError, logs[0].Status)
	assert.Equal(t, "empty_output", logs[0].ErrorMessage)

	// Exactly one retry, at temperature 0.2, before the error log.
	var targetCalls []providers.GenerateRequest
	for _, req := range p.requests() {
		if !strings.Contains(req.Prompt, "impartial judge") {
			targetCalls = append(targetCalls, req)
		}
	}
	require.Len(t, targetCalls, 2)
	assert.InDelta(t, 0.2, targetCalls[1].Temperature, 1e-9)

	// No quality metrics were written for the excluded sample.
	metrics, err := s.GetMetricAggregates(ctx, "t", "exp1")
	require.NoError(t, err)
	for _, m := range metrics {
		assert.NotEqual(t, "quality", m.MetricType)
	}
}

func TestMultiTurnReplay(t *testing.T) {
	s := memory.New()
	replies := []string{"Hello", "Why did the chicken cross the road?", "You're welcome"}
	var turn int
	var mu sync.Mutex
	p := &scriptedProvider{
		judge: `{"score": 0.8, "reason": "coherent"}`,
		respond: func(string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			reply := replies[turn%len(replies)]
			turn++
			return reply, nil
		},
	}
	exp := newExperiment(store.ExperimentConfig{
		EvaluationMode: store.ModeStandard,
		DatasetConversations: []string{
			`{"scenario": "greeting", "turns": [
				{"role": "user", "content": "Hi"},
				{"role": "user", "content": "Tell me a joke"},
				{"role": "user", "content": "Thanks"}
			]}`,
		},
	})
	ctx := context.Background()
	require.NoError(t, s.CreateExperiment(ctx, "t", exp))

	require.NoError(t, newOrchestrator(s, p).Run(ctx, "t", exp))

	logs, err := s.GetLogs(ctx, "t", "exp1", store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, true, logs[0].Metadata["is_conversational"])
	assert.Equal(t, 6, logs[0].Metadata["turn_count"])

	got, err := s.GetExperimentByID(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	assert.Equal(t, 1, got.Results.TotalPrompts)
}

func TestCustomScorerRun(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	threshold := 0.5
	require.NoError(t, s.CreateScorer(ctx, "t", &store.ScorerDefinition{
		ID: "s1", Name: "correctness-judge", MetricKey: "correctnessJudge",
		Type: store.ScorerTypeLLM, Enabled: true, DefaultThreshold: 0.5, PassThreshold: &threshold,
		Messages: []store.ScorerMessage{
			{Role: "system", Template: "Judge correctness."},
			{Role: "user", Template: "Q: {{input}}\nA: {{output}}\nReply PASS or FAIL."},
		},
		ChoiceScores: map[string]float64{"PASS": 1.0, "FAIL": 0.0},
	}))

	p := &scriptedProvider{
		judge: `{"score": 1.0, "reason": ""}`,
		respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Reply PASS or FAIL") {
				return "PASS: looks right.", nil
			}
			return "4", nil
		},
	}
	exp := newExperiment(store.ExperimentConfig{
		EvaluationMode: store.ModeScorer,
		DatasetPrompts: []string{`{"prompt": "2+2?", "expected_output": "4"}`},
	})
	require.NoError(t, s.CreateExperiment(ctx, "t", exp))

	require.NoError(t, newOrchestrator(s, p).Run(ctx, "t", exp))

	got, err := s.GetExperimentByID(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	assert.InDelta(t, 1.0, got.Results.AvgScores["correctnessJudge"], 1e-9)
}

func TestEmptyDatasetFinalizesFailed(t *testing.T) {
	s := memory.New()
	p := &scriptedProvider{respond: func(string) (string, error) { return "x", nil }}
	exp := newExperiment(store.ExperimentConfig{EvaluationMode: store.ModeStandard})
	ctx := context.Background()
	require.NoError(t, s.CreateExperiment(ctx, "t", exp))

	require.NoError(t, newOrchestrator(s, p).Run(ctx, "t", exp))

	got, err := s.GetExperimentByID(ctx, "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
	require.NotNil(t, got.CompletedAt)
}

func TestCancellationFinalizesFailedWithCancelledMessage(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	p := providers.Func(func(ctx context.Context, req providers.GenerateRequest) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	exp := newExperiment(store.ExperimentConfig{
		EvaluationMode: store.ModeStandard,
		DatasetPrompts: []string{`{"prompt": "slow one"}`},
	})
	require.NoError(t, s.CreateExperiment(context.Background(), "t", exp))

	o := &orchestrator.Orchestrator{
		Store:         s,
		BuildProvider: func(providers.ModelSpec) (providers.Provider, error) { return p, nil },
	}
	require.NoError(t, o.Run(ctx, "t", exp))

	got, err := s.GetExperimentByID(context.Background(), "t", "exp1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, got.Status)
	assert.Equal(t, "cancelled", got.ErrorMessage)
}
