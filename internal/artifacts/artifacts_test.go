package artifacts_test

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evalengine/core/internal/artifacts"
	"github.com/evalengine/core/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExperimentProducesJSONAndCSV(t *testing.T) {
	dir := t.TempDir()
	w := &artifacts.Writer{Dir: dir, Now: func() time.Time { return time.Unix(1700000000, 0) }}

	exp := &store.Experiment{
		ID: "exp1", Name: "smoke", Status: store.StatusCompleted,
		Results: &store.ExperimentResults{
			TotalPrompts: 2,
			AvgScores:    map[string]float64{"answerRelevancy": 0.75, "correctness": 1},
			DetailedResults: []store.DetailedResult{
				{Input: "2+2?", Output: "4", Scores: map[string]float64{"answerRelevancy": 0.5, "correctness": 1}},
				{Input: "Capital of France?", Output: "Paris", Scores: map[string]float64{"answerRelevancy": 1}},
			},
		},
	}
	require.NoError(t, w.WriteExperiment("tenant-a", exp))

	raw, err := os.ReadFile(filepath.Join(dir, "tenant-a", "exp1", "results.json"))
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "exp1", report["experiment_id"])
	assert.EqualValues(t, 2, report["total_prompts"])

	f, err := os.Open(filepath.Join(dir, "tenant-a", "exp1", "detailed_results.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"input", "output", "answerRelevancy", "correctness"}, rows[0])
	assert.Equal(t, []string{"2+2?", "4", "0.5", "1"}, rows[1])
	assert.Equal(t, []string{"Capital of France?", "Paris", "1", ""}, rows[2])
}

func TestWriteExperimentWithoutResultsErrors(t *testing.T) {
	w := &artifacts.Writer{Dir: t.TempDir()}
	err := w.WriteExperiment("t", &store.Experiment{ID: "exp1"})
	assert.Error(t, err)
}

func TestWriteArena(t *testing.T) {
	dir := t.TempDir()
	w := &artifacts.Writer{Dir: dir}
	arena := &store.ArenaComparison{
		ID: "cmp1", Name: "showdown", Status: store.ArenaCompleted,
		Results: &store.ArenaResults{
			OverallWinner: "B",
			WinCounts:     map[string]int{"A": 0, "B": 2},
		},
	}
	require.NoError(t, w.WriteArena("tenant-a", arena))

	raw, err := os.ReadFile(filepath.Join(dir, "tenant-a", "cmp1", "results.json"))
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "B", report["winner"])
}
