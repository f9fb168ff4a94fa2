package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evalengine/core/internal/store"
)

// The JSON payload shapes below mirror the experiment and arena request
// bodies the upstream HTTP layer would deliver. They are request data, so
// they get hand-written Validate methods rather than a koanf pass.

type modelPayload struct {
	Name         string `json:"name"`
	Model        string `json:"model"` // judgeLlm spells the model name this way
	Provider     string `json:"provider"`
	AccessMethod string `json:"accessMethod"`
	APIKey       string `json:"apiKey"`
	EndpointURL  string `json:"endpointUrl"`
	MaxTokens    int    `json:"maxTokens"`
}

func (m modelPayload) modelName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Model
}

func (m modelPayload) provider() string {
	if m.Provider != "" {
		return m.Provider
	}
	return m.AccessMethod
}

func (m modelPayload) toSpec() store.ModelSpec {
	return store.ModelSpec{
		Name:        m.modelName(),
		Provider:    m.provider(),
		APIKey:      m.APIKey,
		EndpointURL: m.EndpointURL,
	}
}

type scenarioPayload struct {
	Scenario        string `json:"scenario"`
	ExpectedOutcome string `json:"expected_outcome"`
	UserDescription string `json:"user_description"`
}

type datasetPayload struct {
	UseBuiltin    string            `json:"useBuiltin"`
	Path          string            `json:"path"`
	Prompts       []json.RawMessage `json:"prompts"`
	Conversations []json.RawMessage `json:"conversations"`
	SimulatedMode bool              `json:"simulatedMode"`
	Scenarios     []scenarioPayload `json:"scenarios"`
	MaxTurns      int               `json:"maxTurns"`
}

func (d datasetPayload) empty() bool {
	return d.UseBuiltin == "" && d.Path == "" &&
		len(d.Prompts) == 0 && len(d.Conversations) == 0 &&
		!(d.SimulatedMode && len(d.Scenarios) > 0)
}

type experimentPayload struct {
	ProjectID       string             `json:"project_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	TaskType        string             `json:"taskType"`
	EvaluationMode  string             `json:"evaluationMode"`
	Model           modelPayload       `json:"model"`
	JudgeLLM        modelPayload       `json:"judgeLlm"`
	Dataset         datasetPayload     `json:"dataset"`
	Metrics         map[string]bool    `json:"metrics"`
	Thresholds      map[string]float64 `json:"thresholds"`
	SelectedScorers []string           `json:"selectedScorers"`
	ScorerAPIKeys   map[string]string  `json:"scorerApiKeys"`
	QualityGate     map[string]float64 `json:"qualityGate"`
}

func (p *experimentPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("experiment name is required")
	}
	if p.Model.modelName() == "" {
		return fmt.Errorf("model.name is required")
	}
	if p.Model.provider() == "" {
		return fmt.Errorf("model.provider (or accessMethod) is required")
	}
	if p.Dataset.empty() {
		return fmt.Errorf("dataset requires one of prompts, conversations, useBuiltin, path, or simulatedMode scenarios")
	}
	return nil
}

// toExperiment converts the payload into the durable Experiment record the
// orchestrator consumes.
func (p *experimentPayload) toExperiment(id string) *store.Experiment {
	cfg := store.ExperimentConfig{
		Model:             p.Model.toSpec(),
		JudgeLLM:          p.JudgeLLM.toSpec(),
		JudgeMaxTokens:    p.JudgeLLM.MaxTokens,
		DatasetUseBuiltin: p.Dataset.UseBuiltin,
		DatasetPath:       p.Dataset.Path,
		SimulatedMode:     p.Dataset.SimulatedMode,
		MaxTurns:          p.Dataset.MaxTurns,
		TaskType:          store.TaskType(p.TaskType),
		EvaluationMode:    store.EvaluationMode(p.EvaluationMode),
		Metrics:           p.Metrics,
		Thresholds:        p.Thresholds,
		SelectedScorers:   p.SelectedScorers,
		ScorerAPIKeys:     p.ScorerAPIKeys,
		QualityGate:       p.QualityGate,
	}
	for _, raw := range p.Dataset.Prompts {
		cfg.DatasetPrompts = append(cfg.DatasetPrompts, string(raw))
	}
	for _, raw := range p.Dataset.Conversations {
		cfg.DatasetConversations = append(cfg.DatasetConversations, string(raw))
	}
	for _, sc := range p.Dataset.Scenarios {
		cfg.DatasetScenarios = append(cfg.DatasetScenarios, store.ScenarioSeed{
			Scenario:        sc.Scenario,
			ExpectedOutcome: sc.ExpectedOutcome,
			UserDescription: sc.UserDescription,
		})
	}
	return &store.Experiment{
		ID:          id,
		ProjectID:   p.ProjectID,
		Name:        p.Name,
		Description: p.Description,
		Config:      cfg,
		Status:      store.StatusPending,
	}
}

type contestantPayload struct {
	Name            string            `json:"name"`
	Hyperparameters map[string]string `json:"hyperparameters"`
}

type arenaMetricPayload struct {
	Name        string `json:"name"`
	Criteria    string `json:"criteria"`
	DatasetPath string `json:"datasetPath"`
}

type arenaPayload struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	OrgID       string              `json:"orgId"`
	Contestants []contestantPayload `json:"contestants"`
	Metric      arenaMetricPayload  `json:"metric"`
	JudgeModel  string              `json:"judgeModel"`
	APIKeys     map[string]string   `json:"apiKeys"`
}

func (p *arenaPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("comparison name is required")
	}
	if len(p.Contestants) < 2 {
		return fmt.Errorf("at least 2 contestants are required, got %d", len(p.Contestants))
	}
	for i, c := range p.Contestants {
		if c.Name == "" {
			return fmt.Errorf("contestant %d has no name", i)
		}
		if c.Hyperparameters["provider"] == "" || c.Hyperparameters["model"] == "" {
			return fmt.Errorf("contestant %q needs hyperparameters.provider and hyperparameters.model", c.Name)
		}
	}
	if p.JudgeModel == "" {
		return fmt.Errorf("judgeModel is required")
	}
	if p.Metric.DatasetPath == "" {
		return fmt.Errorf("metric.datasetPath is required")
	}
	return nil
}

func (p *arenaPayload) toComparison(id string) *store.ArenaComparison {
	contestants := make([]store.Contestant, len(p.Contestants))
	for i, c := range p.Contestants {
		contestants[i] = store.Contestant{
			Name: c.Name,
			ModelSpec: store.ModelSpec{
				Name:     c.Hyperparameters["model"],
				Provider: c.Hyperparameters["provider"],
			},
			Hyperparameters: c.Hyperparameters,
		}
	}
	return &store.ArenaComparison{
		ID:          id,
		OrgID:       p.OrgID,
		Name:        p.Name,
		Description: p.Description,
		Contestants: contestants,
		MetricName:  p.Metric.Name,
		Criteria:    p.Metric.Criteria,
		DatasetPath: p.Metric.DatasetPath,
		JudgeModel:  p.JudgeModel,
		Status:      store.ArenaPending,
	}
}

func readPayload(path string, v interface{ Validate() error }) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	return v.Validate()
}
