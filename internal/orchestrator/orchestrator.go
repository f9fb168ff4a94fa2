// Package orchestrator implements the C6 Experiment Orchestrator: the
// end-to-end lifecycle of one experiment.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/evalengine/core/internal/artifacts"
	"github.com/evalengine/core/internal/concurrency"
	"github.com/evalengine/core/internal/dataset"
	"github.com/evalengine/core/internal/gatekeeper"
	"github.com/evalengine/core/internal/metrics"
	"github.com/evalengine/core/internal/metrics/judge"
	"github.com/evalengine/core/internal/providers"
	"github.com/evalengine/core/internal/sample"
	"github.com/evalengine/core/internal/scorer"
	"github.com/evalengine/core/internal/store"
	"github.com/evalengine/core/internal/testcase"
)

// cancelledMessage is the terminal error_message for a run aborted by
// external cancellation mid-experiment.
const cancelledMessage = "cancelled"

// Orchestrator drives one experiment at a time through pending -> running ->
// completed/failed. Callers run one Orchestrator.Run per experiment task;
// multiple experiments may run concurrently as independent Orchestrator
// instances sharing only the Store.
type Orchestrator struct {
	Store store.Store

	// NewID generates IDs for logs/metrics created during a run. Defaults
	// to uuid.NewString.
	NewID func() string

	// Concurrency bounds per-sample fan-out; log order is still preserved
	// via internal/concurrency.
	Concurrency concurrency.Options

	// BuildProvider resolves a ModelSpec to a Provider. Defaults to
	// providers.Build; tests substitute fakes here.
	BuildProvider func(providers.ModelSpec) (providers.Provider, error)

	// Artifacts, when non-nil, receives a per-run report after a successful
	// finalization. Report failures are logged, never fatal.
	Artifacts *artifacts.Writer
}

func (o *Orchestrator) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o *Orchestrator) buildProvider(spec providers.ModelSpec) (providers.Provider, error) {
	if o.BuildProvider != nil {
		return o.BuildProvider(spec)
	}
	return providers.Build(spec)
}

// mirrorJobStatus updates the ephemeral job-status store. The durable
// experiment row stays authoritative, so mirror failures only warn.
func (o *Orchestrator) mirrorJobStatus(ctx context.Context, tenant, experimentID, status string) {
	if err := o.Store.SetJobStatus(ctx, tenant, experimentID, status); err != nil {
		slog.Warn("orchestrator: job status mirror write failed", "tenant", tenant, "experiment_id", experimentID, "error", err)
	}
}

// Run executes one experiment end to end. Run-time failures never surface
// as a returned error; they are captured in the Experiment's terminal
// status. Only irrecoverable store errors while marking the run running or
// during finalization are returned.
func (o *Orchestrator) Run(ctx context.Context, tenant string, exp *store.Experiment) error {
	slog.Info("orchestrator: experiment starting", "tenant", tenant, "experiment_id", exp.ID)

	if err := o.Store.UpdateExperimentStatus(ctx, tenant, exp.ID, store.StatusRunning, ""); err != nil {
		return fmt.Errorf("orchestrator: transition to running: %w", err)
	}
	o.mirrorJobStatus(ctx, tenant, exp.ID, string(store.StatusRunning))

	results, err := o.execute(ctx, tenant, exp)
	if err != nil {
		msg := err.Error()
		if ctx.Err() != nil {
			msg = cancelledMessage
		}
		slog.Error("orchestrator: experiment failed", "tenant", tenant, "experiment_id", exp.ID, "error", msg)
		// Finalize against a fresh context: the run's ctx may be the very
		// cancellation that failed the experiment.
		finalCtx := context.WithoutCancel(ctx)
		if finalErr := o.Store.UpdateExperimentStatus(finalCtx, tenant, exp.ID, store.StatusFailed, msg); finalErr != nil {
			return fmt.Errorf("orchestrator: finalize failed status: %w (original error: %s)", finalErr, msg)
		}
		o.mirrorJobStatus(finalCtx, tenant, exp.ID, string(store.StatusFailed))
		return nil
	}

	exp.Results = results
	if err := o.Store.UpdateExperiment(ctx, tenant, exp); err != nil {
		return fmt.Errorf("orchestrator: persist results: %w", err)
	}
	if err := o.Store.UpdateExperimentStatus(ctx, tenant, exp.ID, store.StatusCompleted, ""); err != nil {
		return fmt.Errorf("orchestrator: finalize completed status: %w", err)
	}
	o.mirrorJobStatus(ctx, tenant, exp.ID, string(store.StatusCompleted))
	if o.Artifacts != nil {
		if err := o.Artifacts.WriteExperiment(tenant, exp); err != nil {
			slog.Warn("orchestrator: artifact report write failed", "tenant", tenant, "experiment_id", exp.ID, "error", err)
		}
	}
	slog.Info("orchestrator: experiment completed", "tenant", tenant, "experiment_id", exp.ID, "total_prompts", results.TotalPrompts)
	return nil
}

// execute implements steps 3-10; any returned error is a run-time failure
// the caller finalizes as `failed`.
func (o *Orchestrator) execute(ctx context.Context, tenant string, exp *store.Experiment) (*store.ExperimentResults, error) {
	cfg := exp.Config

	targetProvider, err := o.buildProvider(providers.ModelSpec{
		Provider: cfg.Model.Provider,
		APIKey:   cfg.Model.APIKey,
		BaseURL:  cfg.Model.EndpointURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build target provider: %w", err)
	}

	ds, err := dataset.Load(datasetReference(cfg))
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if len(ds.Samples) == 0 {
		return nil, fmt.Errorf("dataset has no samples")
	}

	builder := &testcase.Builder{Provider: targetProvider, Model: cfg.Model.Name, MaxTokens: 512}

	testCases, logs, err := o.buildTestCases(ctx, ds, builder, targetProvider)
	if err != nil {
		return nil, err
	}
	if err := o.persistLogs(ctx, tenant, exp.ID, logs); err != nil {
		return nil, fmt.Errorf("persist logs: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	judgeProvider, err := o.buildProvider(providers.ModelSpec{
		Provider: cfg.JudgeLLM.Provider,
		APIKey:   cfg.JudgeLLM.APIKey,
		BaseURL:  cfg.JudgeLLM.EndpointURL,
	})
	if err != nil {
		return nil, fmt.Errorf("build judge provider: %w", err)
	}

	metricScores := make([]map[string]metrics.Score, len(testCases))
	for i := range metricScores {
		metricScores[i] = map[string]metrics.Score{}
	}

	if cfg.EvaluationMode == "" {
		cfg.EvaluationMode = store.ModeBoth
	}

	// One judge response cache per run, shared by the metric dispatcher and
	// the custom scorer runner.
	judgeCache := judge.NewCache()

	if cfg.EvaluationMode == store.ModeStandard || cfg.EvaluationMode == store.ModeBoth {
		dispatcher := &metrics.Dispatcher{JudgeProvider: judgeProvider, JudgeModel: cfg.JudgeLLM.Name, JudgeMaxTokens: cfg.JudgeMaxTokens, Cache: judgeCache}
		metricKeys := metrics.SelectMetrics(cfg.Metrics, cfg.TaskType)
		perSample := dispatcher.ScoreBatch(ctx, testCases, metricKeys, cfg.Thresholds, o.concurrencyOpts())
		for i, scores := range perSample {
			for _, s := range scores {
				metricScores[i][metrics.CamelKey(s.MetricKey)] = s
			}
		}
	}

	var scorerAverages map[string]float64
	if cfg.EvaluationMode == store.ModeScorer || cfg.EvaluationMode == store.ModeBoth {
		scorerAverages, err = o.runScorers(ctx, tenant, exp.ProjectID, cfg, judgeProvider, judgeCache, testCases, metricScores)
		if err != nil {
			return nil, fmt.Errorf("run custom scorers: %w", err)
		}
	}

	if err := o.mergeScoresIntoLogs(ctx, tenant, logs, metricScores); err != nil {
		return nil, fmt.Errorf("merge metric scores into logs: %w", err)
	}

	builtinAverages := metrics.Aggregate(toScoreSlices(metricScores))
	if err := o.writeMetricAggregates(ctx, tenant, exp.ID, builtinAverages, scorerAverages); err != nil {
		return nil, fmt.Errorf("write metric aggregates: %w", err)
	}

	avgScores := make(map[string]float64, len(builtinAverages)+len(scorerAverages))
	for k, v := range builtinAverages {
		avgScores[k] = v
	}
	for k, v := range scorerAverages {
		avgScores[k] = v
	}

	detailed := buildDetailedResults(testCases, metricScores)

	result := &store.ExperimentResults{
		TotalPrompts:    len(testCases),
		AvgScores:       avgScores,
		DetailedResults: detailed,
	}
	if len(cfg.QualityGate) > 0 {
		result.Gatekeeper = gatekeeper.Evaluate(avgScores, gatekeeper.QualityGateSuite(cfg.QualityGate))
	}
	return result, nil
}

func (o *Orchestrator) concurrencyOpts() concurrency.Options {
	if o.Concurrency.Concurrency > 0 {
		return o.Concurrency
	}
	return concurrency.DefaultOptions()
}

// buildTestCases covers the three construction paths, returning test cases
// and their corresponding logs in dataset order. Samples whose single-turn
// generation ended in an error log are excluded from testCases but still
// get a log entry.
func (o *Orchestrator) buildTestCases(ctx context.Context, ds dataset.Dataset, builder *testcase.Builder, targetProvider providers.Provider) ([]sample.TestCase, []*store.EvaluationLog, error) {
	switch ds.Kind {
	case dataset.KindSingleTurn:
		results := builder.BuildSingleTurnBatch(ctx, ds.Samples, o.concurrencyOpts())
		testCases := make([]sample.TestCase, 0, len(results))
		logs := make([]*store.EvaluationLog, 0, len(results))
		for _, r := range results {
			logs = append(logs, r.Log)
			if r.Err == nil {
				testCases = append(testCases, r.TestCase)
			}
		}
		return testCases, logs, nil

	case dataset.KindConversational:
		results, _ := concurrency.Run(ctx, ds.Samples, o.concurrencyOpts(), func(ctx context.Context, s sample.Sample, _ int) (testcase.Result, error) {
			return builder.BuildMultiTurn(ctx, s), nil
		})
		testCases := make([]sample.TestCase, 0, len(results))
		logs := make([]*store.EvaluationLog, 0, len(results))
		for _, r := range results {
			logs = append(logs, r.Log)
			testCases = append(testCases, r.TestCase)
		}
		return testCases, logs, nil

	case dataset.KindSimulated:
		sim := &testcase.ProviderUserSimulator{Provider: targetProvider, Model: builder.Model}
		goldens := make([]sample.ConversationalGolden, len(ds.Scenarios))
		for i, sc := range ds.Scenarios {
			goldens[i] = sample.ConversationalGolden{Scenario: sc.Scenario, ExpectedOutcome: sc.ExpectedOutcome, UserDescription: sc.UserDescription}
		}
		results, _ := concurrency.Run(ctx, goldens, o.concurrencyOpts(), func(ctx context.Context, g sample.ConversationalGolden, i int) (testcase.Result, error) {
			return builder.BuildSimulated(ctx, g, sim, ds.MaxTurns, fmt.Sprintf("scenario-%d", i)), nil
		})
		testCases := make([]sample.TestCase, 0, len(results))
		logs := make([]*store.EvaluationLog, 0, len(results))
		for _, r := range results {
			logs = append(logs, r.Log)
			testCases = append(testCases, r.TestCase)
		}
		return testCases, logs, nil

	default:
		return nil, nil, fmt.Errorf("unknown dataset kind %q", ds.Kind)
	}
}

// persistLogs writes logs in dataset order and records a per-sample latency
// metric (metric_type=performance) for each successful sample.
func (o *Orchestrator) persistLogs(ctx context.Context, tenant, experimentID string, logs []*store.EvaluationLog) error {
	for _, log := range logs {
		log.ID = o.newID()
		log.ExperimentID = experimentID
		log.Tenant = tenant
		log.TraceID = log.ID
		if err := o.Store.CreateLog(ctx, tenant, log); err != nil {
			return err
		}
		if log.Status != store.LogSuccess {
			continue
		}
		m := &store.EvaluationMetric{
			ID:           o.newID(),
			ExperimentID: experimentID,
			MetricName:   "latency",
			MetricType:   "performance",
			Value:        float64(log.LatencyMS),
		}
		if err := o.Store.CreateMetric(ctx, tenant, m); err != nil {
			return err
		}
	}
	return nil
}

// scorerJudge resolves the judge provider and model name for one scorer
// definition: the scorer's own judgeModel config wins, with its API key
// looked up from the run's scorerApiKeys map; otherwise the experiment's
// judge LLM serves.
func (o *Orchestrator) scorerJudge(cfg store.ExperimentConfig, def *store.ScorerDefinition, fallback providers.Provider) (providers.Provider, string, error) {
	if def.JudgeModel.Provider == "" {
		return fallback, cfg.JudgeLLM.Name, nil
	}
	apiKey := def.JudgeModel.APIKey
	if apiKey == "" {
		apiKey = cfg.ScorerAPIKeys[strings.ToLower(def.JudgeModel.Provider)]
	}
	p, err := o.buildProvider(providers.ModelSpec{
		Provider: def.JudgeModel.Provider,
		APIKey:   apiKey,
		BaseURL:  def.JudgeModel.EndpointURL,
	})
	if err != nil {
		return nil, "", err
	}
	return p, def.JudgeModel.Name, nil
}

func (o *Orchestrator) runScorers(ctx context.Context, tenant, projectID string, cfg store.ExperimentConfig, judgeProvider providers.Provider, judgeCache *judge.Cache, testCases []sample.TestCase, metricScores []map[string]metrics.Score) (map[string]float64, error) {
	all, err := o.Store.ListScorers(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	selected := scorer.Select(all, cfg.SelectedScorers)
	if len(selected) == 0 {
		return map[string]float64{}, nil
	}

	sums := map[string]float64{}
	counts := map[string]int{}

	for i, tc := range testCases {
		if tc.Kind != sample.KindSingleTurn {
			continue
		}
		for _, def := range selected {
			p, judgeModel, err := o.scorerJudge(cfg, def, judgeProvider)
			if err != nil {
				slog.Warn("orchestrator: scorer judge unavailable", "scorer", def.Name, "error", err)
				continue
			}
			res, err := scorer.Run(ctx, p, def, judgeModel, tc.Input, tc.ActualOutput, tc.ExpectedOutput, judgeCache)
			if err != nil {
				slog.Warn("orchestrator: scorer run failed", "scorer", def.Name, "error", err)
				continue
			}
			metricScores[i][def.MetricKey] = metrics.Score{MetricKey: def.MetricKey, Score: &res.Score, Passed: res.Passed}
			sums[def.MetricKey] += res.Score
			counts[def.MetricKey]++
		}
	}

	avgs := make(map[string]float64, len(sums))
	for key, sum := range sums {
		avgs[key] = sum / float64(counts[key])
	}
	return avgs, nil
}

func (o *Orchestrator) mergeScoresIntoLogs(ctx context.Context, tenant string, logs []*store.EvaluationLog, metricScores []map[string]metrics.Score) error {
	scoreIdx := 0
	for _, log := range logs {
		if log.Status != store.LogSuccess {
			continue
		}
		scores := metricScores[scoreIdx]
		scoreIdx++
		flat := make(map[string]any, len(scores))
		for key, s := range scores {
			if s.Score != nil {
				flat[key] = *s.Score
			}
		}
		patch := store.MergeMetadata(log.Metadata, map[string]any{"metric_scores": flat})
		if err := o.Store.UpdateLogMetadata(ctx, tenant, log.ID, patch); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) writeMetricAggregates(ctx context.Context, tenant, experimentID string, builtin, scorers map[string]float64) error {
	for key, value := range builtin {
		m := &store.EvaluationMetric{ID: o.newID(), ExperimentID: experimentID, MetricName: key, MetricType: "quality", Value: value}
		if err := o.Store.CreateMetric(ctx, tenant, m); err != nil {
			return err
		}
	}
	for key, value := range scorers {
		m := &store.EvaluationMetric{ID: o.newID(), ExperimentID: experimentID, MetricName: key, MetricType: "quality", Value: value}
		if err := o.Store.CreateMetric(ctx, tenant, m); err != nil {
			return err
		}
	}
	return nil
}

func toScoreSlices(metricScores []map[string]metrics.Score) [][]metrics.Score {
	out := make([][]metrics.Score, len(metricScores))
	for i, m := range metricScores {
		scores := make([]metrics.Score, 0, len(m))
		for _, s := range m {
			scores = append(scores, s)
		}
		out[i] = scores
	}
	return out
}

// buildDetailedResults returns the first 10 test cases in dataset order.
func buildDetailedResults(testCases []sample.TestCase, metricScores []map[string]metrics.Score) []store.DetailedResult {
	n := len(testCases)
	if n > 10 {
		n = 10
	}
	out := make([]store.DetailedResult, 0, n)
	for i := 0; i < n; i++ {
		scores := make(map[string]float64, len(metricScores[i]))
		for key, s := range metricScores[i] {
			if s.Score != nil {
				scores[key] = *s.Score
			}
		}
		out = append(out, store.DetailedResult{
			Input:  testCases[i].Input,
			Output: testCases[i].ActualOutput,
			Scores: scores,
		})
	}
	return out
}

func datasetReference(cfg store.ExperimentConfig) dataset.Reference {
	ref := dataset.Reference{
		UseBuiltin:    cfg.DatasetUseBuiltin,
		Path:          cfg.DatasetPath,
		SimulatedMode: cfg.SimulatedMode,
		MaxTurns:      cfg.MaxTurns,
	}
	for _, p := range cfg.DatasetPrompts {
		ref.Prompts = append(ref.Prompts, []byte(p))
	}
	for _, c := range cfg.DatasetConversations {
		ref.Conversations = append(ref.Conversations, []byte(c))
	}
	for _, sc := range cfg.DatasetScenarios {
		ref.Scenarios = append(ref.Scenarios, dataset.ScenarioSpec{
			Scenario:        sc.Scenario,
			ExpectedOutcome: sc.ExpectedOutcome,
			UserDescription: sc.UserDescription,
		})
	}
	return ref
}
