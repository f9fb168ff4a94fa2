package metrics

import (
	"sort"

	"github.com/evalengine/core/internal/store"
)

// universalCore is the metric family enabled regardless of taskType.
var universalCore = []string{
	"answer_relevancy", "correctness", "completeness",
	"hallucination", "instruction_following", "toxicity", "bias",
}

// ragOnly are the RAG-only metrics, skipped when no retrieval context is
// present.
var ragOnly = []string{
	"context_relevancy", "context_precision", "context_recall", "faithfulness",
}

// agentOnly are the agent-only metrics.
var agentOnly = []string{
	"tool_selection", "tool_correctness", "action_relevance", "planning_quality",
}

// displayNames maps a metric key to the human-readable name the dispatcher
// writes into that metric's judge rubric.
var displayNames = map[string]string{
	"answer_relevancy":      "Relevance",
	"correctness":           "Correctness",
	"completeness":          "Completeness",
	"hallucination":         "Hallucination",
	"instruction_following":  "Instruction Following",
	"toxicity":              "Toxicity",
	"bias":                  "Bias",
	"context_relevancy":      "Context Relevancy",
	"context_precision":      "Context Precision",
	"context_recall":         "Context Recall",
	"faithfulness":           "Faithfulness",
	"tool_selection":         "Tool Selection",
	"tool_correctness":       "Tool Correctness",
	"action_relevance":       "Action Relevance",
	"planning_quality":       "Planning Quality",
}

// conversationalFamily is the fixed set of conversational rubrics:
// coherence, helpfulness, task completion (when an expected outcome
// exists), and safety.
var conversationalFamily = []string{
	"conversation_coherence", "helpfulness", "task_completion", "conversation_safety",
}

var conversationalDisplayNames = map[string]string{
	"conversation_coherence": "Conversation Coherence",
	"helpfulness":            "Helpfulness",
	"task_completion":        "Task Completion",
	"conversation_safety":    "Conversation Safety",
}

// camelKeys maps a metric's internal snake_case key to the stable camelCase
// key used for storage and API responses. This mapping is the
// single source of truth for downstream aggregation.
var camelKeys = map[string]string{
	"answer_relevancy":      "answerRelevancy",
	"correctness":           "correctness",
	"completeness":          "completeness",
	"hallucination":         "hallucination",
	"instruction_following":  "instructionFollowing",
	"toxicity":              "toxicity",
	"bias":                  "bias",
	"context_relevancy":      "contextRelevancy",
	"context_precision":      "contextPrecision",
	"context_recall":         "contextRecall",
	"faithfulness":           "faithfulness",
	"tool_selection":         "toolSelection",
	"tool_correctness":       "toolCorrectness",
	"action_relevance":       "actionRelevance",
	"planning_quality":       "planningQuality",
	"conversation_coherence": "conversationCoherence",
	"helpfulness":            "helpfulness",
	"task_completion":        "taskCompletion",
	"conversation_safety":    "conversationSafety",
}

// CamelKey re-maps an internal snake_case metric key to its stable camelCase
// identifier. Unmapped names (display names included) pass through unchanged.
func CamelKey(key string) string {
	if camel, ok := camelKeys[key]; ok {
		return camel
	}
	return key
}

// SelectMetrics applies the selection rules: an explicit
// metrics map disables anything unmentioned; its absence falls back to
// taskType-driven defaults.
func SelectMetrics(metricsMap map[string]bool, taskType store.TaskType) []string {
	if metricsMap != nil {
		selected := make([]string, 0, len(metricsMap))
		for key, enabled := range metricsMap {
			if enabled {
				selected = append(selected, toSnake(key))
			}
		}
		return selected
	}

	selected := append([]string{}, universalCore...)
	switch taskType {
	case store.TaskRAG:
		selected = append(selected, ragOnly...)
	case store.TaskAgent:
		selected = append(selected, agentOnly...)
	}
	return selected
}

// toSnake converts a camelCase metric key from the caller's metrics map
// (e.g. "answerRelevancy") back to its internal snake_case form, since
// SelectMetrics works in snake_case and CamelKey re-derives the camel form
// for storage.
func toSnake(camel string) string {
	for snake, c := range camelKeys {
		if c == camel {
			return snake
		}
	}
	return camel
}

// List returns every metric key this dispatcher can compute (universal,
// RAG, agent, and conversational families), sorted alphabetically, for an
// (out-of-scope) HTTP catalog layer.
func List() []string {
	all := make([]string, 0, len(universalCore)+len(ragOnly)+len(agentOnly)+len(conversationalFamily))
	all = append(all, universalCore...)
	all = append(all, ragOnly...)
	all = append(all, agentOnly...)
	all = append(all, conversationalFamily...)
	sort.Strings(all)
	return all
}

func isRAGMetric(key string) bool {
	for _, m := range ragOnly {
		if m == key {
			return true
		}
	}
	return false
}

func isAgentMetric(key string) bool {
	for _, m := range agentOnly {
		if m == key {
			return true
		}
	}
	return false
}
