package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObjectBalancedBraces(t *testing.T) {
	raw := "Sure! Here is my verdict:\n```json\n{\"winner\": \"A\", \"scores\": {\"A\": {\"accuracy\": 8}}}\n```\nHope that helps."
	obj := extractJSONObject(raw)
	assert.Equal(t, `{"winner": "A", "scores": {"A": {"accuracy": 8}}}`, obj)
}

func TestExtractJSONObjectIgnoresBracesInStrings(t *testing.T) {
	raw := `{"reasoning": "uses { and } inside", "winner": "B"}`
	assert.Equal(t, raw, extractJSONObject(raw))
}

func TestExtractJSONObjectNoObject(t *testing.T) {
	assert.Empty(t, extractJSONObject("no json here"))
	assert.Empty(t, extractJSONObject("{unterminated"))
}

func TestParseJudgeResponseFallsBackToNameMatch(t *testing.T) {
	v := parseJudgeResponse("I think bravo gave the best answer overall.", []string{"alpha", "bravo"})
	assert.Equal(t, "bravo", v.Winner)
}

func TestValidateWinner(t *testing.T) {
	names := []string{"gpt-4o", "claude-sonnet"}
	assert.Equal(t, "gpt-4o", validateWinner("GPT-4O", names))
	assert.Equal(t, "claude-sonnet", validateWinner("the winner is claude-sonnet", names))
	assert.Equal(t, "TIE", validateWinner("tie", names))
	assert.Equal(t, "", validateWinner("some-other-model", names))
	assert.Equal(t, "", validateWinner("", names))
}

func TestOverallWinner(t *testing.T) {
	assert.Equal(t, "B", overallWinner(map[string]int{"A": 0, "B": 2, "C": 1}))
	assert.Equal(t, "Tie: A, B", overallWinner(map[string]int{"A": 1, "B": 1}))
	assert.Equal(t, "", overallWinner(map[string]int{"A": 0, "B": 0}))
}
