package metrics_test

import (
	"context"
	"testing"

	"github.com/evalengine/core/internal/metrics"
	"github.com/evalengine/core/internal/providers/fake"
	"github.com/evalengine/core/internal/sample"
	"github.com/evalengine/core/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMetricsDefaultsToUniversalCoreForChatbot(t *testing.T) {
	selected := metrics.SelectMetrics(nil, store.TaskChatbot)
	assert.Contains(t, selected, "answer_relevancy")
	assert.NotContains(t, selected, "context_relevancy")
}

func TestSelectMetricsAddsRAGForRAGTaskType(t *testing.T) {
	selected := metrics.SelectMetrics(nil, store.TaskRAG)
	assert.Contains(t, selected, "context_relevancy")
}

func TestSelectMetricsAddsAgentForAgentTaskType(t *testing.T) {
	selected := metrics.SelectMetrics(nil, store.TaskAgent)
	assert.Contains(t, selected, "tool_selection")
}

func TestSelectMetricsHonorsExplicitMap(t *testing.T) {
	selected := metrics.SelectMetrics(map[string]bool{"answerRelevancy": true, "bias": false}, store.TaskChatbot)
	assert.Contains(t, selected, "answer_relevancy")
	assert.NotContains(t, selected, "bias")
}

func TestScoreSingleTurnSkipsRAGWithoutContext(t *testing.T) {
	d := &metrics.Dispatcher{JudgeProvider: fake.NewFixed(`{"score":0.9,"reason":"ok"}`), JudgeModel: "gpt-4o-mini"}
	tc := sample.TestCase{Kind: sample.KindSingleTurn, Input: "q", ActualOutput: "a"}
	scores := d.ScoreSingleTurn(context.Background(), tc, []string{"context_relevancy"}, nil)
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Skipped)
	assert.Equal(t, "No retrieval/context provided", scores[0].Reason)
}

func TestScoreSingleTurnRunsRAGWithContext(t *testing.T) {
	d := &metrics.Dispatcher{JudgeProvider: fake.NewFixed(`{"score":0.9,"reason":"ok"}`), JudgeModel: "gpt-4o-mini"}
	tc := sample.TestCase{Kind: sample.KindSingleTurn, Input: "q", ActualOutput: "a", RetrievalContext: []string{"doc1"}}
	scores := d.ScoreSingleTurn(context.Background(), tc, []string{"context_relevancy"}, nil)
	require.Len(t, scores, 1)
	assert.False(t, scores[0].Skipped)
	require.NotNil(t, scores[0].Score)
	assert.Equal(t, 0.9, *scores[0].Score)
	assert.True(t, scores[0].Passed)
}

func TestScoreSingleTurnAppliesThresholdOverride(t *testing.T) {
	d := &metrics.Dispatcher{JudgeProvider: fake.NewFixed(`{"score":0.6,"reason":"ok"}`), JudgeModel: "gpt-4o-mini"}
	tc := sample.TestCase{Kind: sample.KindSingleTurn, Input: "q", ActualOutput: "a"}
	scores := d.ScoreSingleTurn(context.Background(), tc, []string{"correctness"}, map[string]float64{"correctness": 0.9})
	require.Len(t, scores, 1)
	assert.False(t, scores[0].Passed)
}

func TestScoreConversationalSkipsTaskCompletionWithoutExpectedOutcome(t *testing.T) {
	d := &metrics.Dispatcher{JudgeProvider: fake.NewFixed(`{"score":0.9,"reason":"ok"}`), JudgeModel: "gpt-4o-mini"}
	tc := sample.TestCase{Kind: sample.KindConversational, Turns: []sample.Message{sample.NewUserMessage("hi")}}
	scores := d.ScoreConversational(context.Background(), tc, nil)
	var taskCompletion *metrics.Score
	for i := range scores {
		if scores[i].MetricKey == "task_completion" {
			taskCompletion = &scores[i]
		}
	}
	require.NotNil(t, taskCompletion)
	assert.True(t, taskCompletion.Skipped)
}

func TestAggregateComputesArithmeticMeanOfNonNullScores(t *testing.T) {
	a, b := 0.8, 0.4
	perSample := [][]metrics.Score{
		{{MetricKey: "answer_relevancy", Score: &a}},
		{{MetricKey: "answer_relevancy", Score: &b}},
		{{MetricKey: "answer_relevancy", Score: nil, Skipped: true}},
	}
	avgs := metrics.Aggregate(perSample)
	assert.InDelta(t, 0.6, avgs["answerRelevancy"], 1e-9)
}

func TestCamelKeyPassesThroughUnmapped(t *testing.T) {
	assert.Equal(t, "mystery_metric", metrics.CamelKey("mystery_metric"))
	assert.Equal(t, "answerRelevancy", metrics.CamelKey("answer_relevancy"))
}
