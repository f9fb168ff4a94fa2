package gatekeeper_test

import (
	"testing"

	"github.com/evalengine/core/internal/gatekeeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateReturnsNilWhenNoSuiteConfigured(t *testing.T) {
	result := gatekeeper.Evaluate(map[string]float64{"answerRelevancy": 0.9}, nil)
	assert.Nil(t, result)
}

func TestEvaluatePassesWhenAllMetricsMeetMinimum(t *testing.T) {
	result := gatekeeper.Evaluate(
		map[string]float64{"answerRelevancy": 0.9, "bias": 0.95},
		gatekeeper.QualityGateSuite{"answerRelevancy": 0.7},
	)
	require.NotNil(t, result)
	assert.True(t, result.Passed)
	assert.Empty(t, result.FailReasons)
	assert.Equal(t, []string{"answerRelevancy"}, result.CheckedMetrics)
}

func TestEvaluateFailsWhenMetricBelowMinimum(t *testing.T) {
	result := gatekeeper.Evaluate(
		map[string]float64{"answerRelevancy": 0.4},
		gatekeeper.QualityGateSuite{"answerRelevancy": 0.7},
	)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	require.Len(t, result.FailReasons, 1)
}

func TestEvaluateFailsWhenMetricMissingEntirely(t *testing.T) {
	result := gatekeeper.Evaluate(
		map[string]float64{},
		gatekeeper.QualityGateSuite{"correctness": 0.5},
	)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.Contains(t, result.FailReasons[0], "no score recorded")
}
