// Package gatekeeper checks an experiment's aggregated scores against a
// minimum-average quality gate, non-fatally.
package gatekeeper

import (
	"fmt"

	"github.com/evalengine/core/internal/store"
)

// QualityGateSuite maps a metric key to the minimum average score required
// to pass the gate.
type QualityGateSuite map[string]float64

// Evaluate checks avgScores against suite, returning nil if suite is empty
// (no gate configured; the caller should leave Gatekeeper unset, not treat
// this as a failure).
func Evaluate(avgScores map[string]float64, suite QualityGateSuite) *store.GatekeeperResult {
	if len(suite) == 0 {
		return nil
	}

	checked := make([]string, 0, len(suite))
	var failReasons []string
	passed := true

	for metricKey, minimum := range suite {
		checked = append(checked, metricKey)
		avg, ok := avgScores[metricKey]
		if !ok {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s: no score recorded", metricKey))
			continue
		}
		if avg < minimum {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s: %.3f below minimum %.3f", metricKey, avg, minimum))
		}
	}

	return &store.GatekeeperResult{
		Passed:         passed,
		CheckedMetrics: checked,
		FailReasons:    failReasons,
	}
}
