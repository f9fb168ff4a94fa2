package testcase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/providers/fake"
	"github.com/evalengine/core/internal/sample"
	"github.com/evalengine/core/internal/store"
	"github.com/evalengine/core/internal/testcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSingleTurnSuccess(t *testing.T) {
	p := fake.NewFixed("4")
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}
	res := b.BuildSingleTurn(context.Background(), sample.Sample{Prompt: "What is 2+2?", ExpectedOutput: "4"})

	require.NoError(t, res.Err)
	assert.Equal(t, "4", res.TestCase.ActualOutput)
	assert.Equal(t, store.LogSuccess, res.Log.Status)
}

func TestBuildSingleTurnRetriesOnceOnEmpty(t *testing.T) {
	p := fake.NewSequence("", "4")
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}
	res := b.BuildSingleTurn(context.Background(), sample.Sample{Prompt: "2+2?"})

	require.NoError(t, res.Err)
	assert.Equal(t, "4", res.TestCase.ActualOutput)
}

func TestBuildSingleTurnEmptyAfterRetryProducesErrorLog(t *testing.T) {
	p := fake.NewFixed("")
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}
	res := b.BuildSingleTurn(context.Background(), sample.Sample{Prompt: "2+2?"})

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, testcase.ErrEmptyOutput))
	assert.Equal(t, store.LogError, res.Log.Status)
	assert.Equal(t, "empty_output", res.Log.ErrorMessage)
}

func TestBuildMultiTurnProducesOneLogWithDoubleTurnCount(t *testing.T) {
	p := fake.NewSequence("Hello", "Why did the chicken cross the road?", "You're welcome")
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}

	s := sample.Sample{
		InputTurns: []sample.Message{
			sample.NewUserMessage("Hi"),
			sample.NewUserMessage("Tell me a joke"),
			sample.NewUserMessage("Thanks"),
		},
	}
	res := b.BuildMultiTurn(context.Background(), s)

	require.NoError(t, res.Err)
	require.Len(t, res.TestCase.Turns, 6)
	assert.Equal(t, sample.RoleUser, res.TestCase.Turns[0].Role)
	assert.Equal(t, "Hi", res.TestCase.Turns[0].Content)
	assert.Equal(t, sample.RoleAssistant, res.TestCase.Turns[1].Role)
	assert.Equal(t, "Hello", res.TestCase.Turns[1].Content)
	assert.Equal(t, sample.RoleAssistant, res.TestCase.Turns[5].Role)
	assert.Equal(t, "You're welcome", res.TestCase.Turns[5].Content)
	assert.Equal(t, 6, res.Log.Metadata["turn_count"])
	assert.True(t, res.Log.Metadata["is_conversational"].(bool))
}

type scriptedSimulator struct {
	turns []string
	i     int
}

func (s *scriptedSimulator) NextUserTurn(ctx context.Context, golden sample.ConversationalGolden, history []sample.Message, threadID string) (string, bool, error) {
	if s.i >= len(s.turns) {
		return "", true, nil
	}
	out := s.turns[s.i]
	s.i++
	return out, false, nil
}

func TestBuildSimulatedStopsAtMaxTurns(t *testing.T) {
	p := fake.Echo{}
	sim := &scriptedSimulator{turns: []string{"q1", "q2", "q3", "q4"}}
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}

	res := b.BuildSimulated(context.Background(), sample.ConversationalGolden{Scenario: "s1"}, sim, 4, "thread-1")

	require.NoError(t, res.Err)
	assert.LessOrEqual(t, len(res.TestCase.Turns), 4)
}

func TestBuildSimulatedStopsWhenSimulatorDone(t *testing.T) {
	p := fake.Echo{}
	sim := &scriptedSimulator{turns: []string{"q1"}}
	b := &testcase.Builder{Provider: p, Model: "gpt-4"}

	res := b.BuildSimulated(context.Background(), sample.ConversationalGolden{Scenario: "s1"}, sim, 10, "thread-1")

	require.NoError(t, res.Err)
	assert.Len(t, res.TestCase.Turns, 2)
}

var _ providers.Provider = fake.Echo{}
