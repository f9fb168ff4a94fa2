package arena_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/evalengine/core/internal/arena"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/store"
	"github.com/evalengine/core/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, prompts ...string) string {
	t.Helper()
	type row struct {
		Prompt string `json:"prompt"`
	}
	rows := make([]row, len(prompts))
	for i, p := range prompts {
		rows[i] = row{Prompt: p}
	}
	raw, err := json.Marshal(rows)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// scriptedBuilder returns providers keyed on the requested model name: the
// judge model gets judgeResponses (one per call), everything else echoes a
// per-model canned output.
func scriptedBuilder(judgeModel string, judgeResponses []string) func(providers.ModelSpec) (providers.Provider, error) {
	calls := 0
	return func(spec providers.ModelSpec) (providers.Provider, error) {
		return providers.Func(func(ctx context.Context, req providers.GenerateRequest) (string, error) {
			if req.Model == judgeModel {
				resp := judgeResponses[calls%len(judgeResponses)]
				calls++
				return resp, nil
			}
			return fmt.Sprintf("output from %s", req.Model), nil
		}), nil
	}
}

func newComparison(datasetPath string, contestants ...string) *store.ArenaComparison {
	cs := make([]store.Contestant, len(contestants))
	for i, name := range contestants {
		cs[i] = store.Contestant{
			Name:      name,
			ModelSpec: store.ModelSpec{Provider: "openai", Name: "model-" + name},
		}
	}
	return &store.ArenaComparison{
		ID:          "cmp-1",
		Name:        "showdown",
		Contestants: cs,
		MetricName:  "accuracy, clarity",
		Criteria:    "Prefer correct, clear answers.",
		DatasetPath: datasetPath,
		JudgeModel:  "gpt-4o-judge",
		Status:      store.ArenaPending,
	}
}

func TestThreeWayClearWinner(t *testing.T) {
	s := memory.New()
	path := writeDataset(t, "What is 2+2?", "Capital of France?")
	cmp := newComparison(path, "A", "B", "C")
	require.NoError(t, s.CreateArenaComparison(context.Background(), "t", cmp))

	judgeJSON := `{"scores": {"A": {"accuracy": 4}, "B": {"accuracy": 9}, "C": {"accuracy": 5}}, "winner": "B", "reasoning": "B is most accurate"}`
	e := &arena.Engine{Store: s, BuildProvider: scriptedBuilder("gpt-4o-judge", []string{judgeJSON})}
	require.NoError(t, e.Run(context.Background(), "t", cmp))

	got, err := s.GetArenaComparison(context.Background(), "t", "cmp-1")
	require.NoError(t, err)
	assert.Equal(t, store.ArenaCompleted, got.Status)
	require.NotNil(t, got.Results)
	assert.Equal(t, map[string]int{"A": 0, "B": 2, "C": 0}, got.Results.WinCounts)
	assert.Equal(t, "B", got.Results.OverallWinner)
	require.Len(t, got.Results.DetailedResults, 2)
	assert.Equal(t, 0, got.Results.DetailedResults[0].TestCaseIndex)
	assert.Equal(t, "What is 2+2?", got.Results.DetailedResults[0].Input)
	assert.Equal(t, "B", got.Results.DetailedResults[0].Winner)
	assert.Equal(t, 9.0, got.Results.DetailedResults[0].Contestants[1].Scores["accuracy"])
}

func TestTwoWayTie(t *testing.T) {
	s := memory.New()
	path := writeDataset(t, "q1", "q2")
	cmp := newComparison(path, "A", "B")
	require.NoError(t, s.CreateArenaComparison(context.Background(), "t", cmp))

	judgeResponses := []string{
		`{"scores": {}, "winner": "A", "reasoning": "first"}`,
		`{"scores": {}, "winner": "B", "reasoning": "second"}`,
	}
	e := &arena.Engine{Store: s, BuildProvider: scriptedBuilder("gpt-4o-judge", judgeResponses)}
	require.NoError(t, e.Run(context.Background(), "t", cmp))

	got, err := s.GetArenaComparison(context.Background(), "t", "cmp-1")
	require.NoError(t, err)
	assert.Equal(t, "Tie: A, B", got.Results.OverallWinner)
}

func TestContestantErrorRecordedAsOutput(t *testing.T) {
	s := memory.New()
	path := writeDataset(t, "q1")
	cmp := newComparison(path, "A", "B")
	require.NoError(t, s.CreateArenaComparison(context.Background(), "t", cmp))

	builder := func(spec providers.ModelSpec) (providers.Provider, error) {
		return providers.Func(func(ctx context.Context, req providers.GenerateRequest) (string, error) {
			switch req.Model {
			case "gpt-4o-judge":
				return `{"scores": {}, "winner": "B", "reasoning": "A errored"}`, nil
			case "model-A":
				return "", fmt.Errorf("connection refused")
			default:
				return "fine", nil
			}
		}), nil
	}
	e := &arena.Engine{Store: s, BuildProvider: builder}
	require.NoError(t, e.Run(context.Background(), "t", cmp))

	got, err := s.GetArenaComparison(context.Background(), "t", "cmp-1")
	require.NoError(t, err)
	require.Len(t, got.Results.DetailedResults, 1)
	assert.Contains(t, got.Results.DetailedResults[0].Contestants[0].Output, "Error:")
	assert.Equal(t, "fine", got.Results.DetailedResults[0].Contestants[1].Output)
}

func TestMissingDatasetFinalizesFailed(t *testing.T) {
	s := memory.New()
	cmp := newComparison(filepath.Join(t.TempDir(), "nope.json"), "A", "B")
	require.NoError(t, s.CreateArenaComparison(context.Background(), "t", cmp))

	e := &arena.Engine{Store: s, BuildProvider: scriptedBuilder("gpt-4o-judge", []string{"{}"})}
	require.NoError(t, e.Run(context.Background(), "t", cmp))

	got, err := s.GetArenaComparison(context.Background(), "t", "cmp-1")
	require.NoError(t, err)
	assert.Equal(t, store.ArenaFailed, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
}
