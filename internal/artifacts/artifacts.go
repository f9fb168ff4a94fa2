// Package artifacts writes per-run report files: a JSON summary of an
// experiment's aggregated results and a CSV of its detailed per-sample
// scores, laid out under <dir>/<tenant>/<run_id>/.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/evalengine/core/internal/store"
)

// DefaultDir is where reports land when no artifacts directory is
// configured.
const DefaultDir = "artifacts/deepeval_results"

// Writer renders run reports beneath Dir. The zero value writes under
// DefaultDir.
type Writer struct {
	Dir string

	// Now stamps the report; swappable for deterministic tests.
	Now func() time.Time
}

func (w *Writer) dir() string {
	if w.Dir != "" {
		return w.Dir
	}
	return DefaultDir
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// experimentReport is the JSON summary file's shape.
type experimentReport struct {
	ExperimentID string                    `json:"experiment_id"`
	Name         string                    `json:"name"`
	Status       string                    `json:"status"`
	TotalPrompts int                       `json:"total_prompts"`
	AvgScores    map[string]float64        `json:"avg_scores"`
	Detailed     []store.DetailedResult    `json:"detailed_results"`
	Gatekeeper   *store.GatekeeperResult   `json:"gatekeeper,omitempty"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// WriteExperiment writes results.json and detailed_results.csv for a
// finalized experiment. API keys never reach this layer: the Experiment's
// Config is deliberately not serialized.
func (w *Writer) WriteExperiment(tenant string, exp *store.Experiment) error {
	if exp.Results == nil {
		return fmt.Errorf("artifacts: experiment %s has no results", exp.ID)
	}
	runDir := filepath.Join(w.dir(), tenant, exp.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("artifacts: create run dir: %w", err)
	}

	report := experimentReport{
		ExperimentID: exp.ID,
		Name:         exp.Name,
		Status:       string(exp.Status),
		TotalPrompts: exp.Results.TotalPrompts,
		AvgScores:    exp.Results.AvgScores,
		Detailed:     exp.Results.DetailedResults,
		Gatekeeper:   exp.Results.Gatekeeper,
		GeneratedAt:  w.now().UTC(),
	}
	if err := writeJSON(filepath.Join(runDir, "results.json"), report); err != nil {
		return err
	}
	return writeDetailedCSV(filepath.Join(runDir, "detailed_results.csv"), exp.Results.DetailedResults)
}

// WriteArena writes results.json for a finalized arena comparison.
func (w *Writer) WriteArena(tenant string, arena *store.ArenaComparison) error {
	if arena.Results == nil {
		return fmt.Errorf("artifacts: comparison %s has no results", arena.ID)
	}
	runDir := filepath.Join(w.dir(), tenant, arena.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("artifacts: create run dir: %w", err)
	}
	report := map[string]any{
		"comparison_id":    arena.ID,
		"name":             arena.Name,
		"status":           string(arena.Status),
		"winner":           arena.Results.OverallWinner,
		"win_counts":       arena.Results.WinCounts,
		"detailed_results": arena.Results.DetailedResults,
		"generated_at":     w.now().UTC(),
	}
	return writeJSON(filepath.Join(runDir, "results.json"), report)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artifacts: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("artifacts: encode %s: %w", path, err)
	}
	return nil
}

// writeDetailedCSV flattens per-sample scores into a wide CSV: one row per
// sample, one column per metric key seen anywhere in the run.
func writeDetailedCSV(path string, detailed []store.DetailedResult) error {
	keySet := map[string]bool{}
	for _, d := range detailed {
		for k := range d.Scores {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artifacts: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := append([]string{"input", "output"}, keys...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("artifacts: write csv header: %w", err)
	}
	for _, d := range detailed {
		row := []string{d.Input, d.Output}
		for _, k := range keys {
			if score, ok := d.Scores[k]; ok {
				row = append(row, strconv.FormatFloat(score, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("artifacts: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
