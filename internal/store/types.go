// Package store defines the persistence-facing domain entities
// and the C8 Persistence Adapter contract implemented by internal/store/postgres
// and mirrored ephemerally by internal/store/jobstatus.
package store

import "time"

// ExperimentStatus is the terminal-state machine for an Experiment.
type ExperimentStatus string

const (
	StatusPending   ExperimentStatus = "pending"
	StatusRunning   ExperimentStatus = "running"
	StatusCompleted ExperimentStatus = "completed"
	StatusFailed    ExperimentStatus = "failed"
)

// EvaluationMode selects which of C4/C5 run for an experiment.
type EvaluationMode string

const (
	ModeScorer   EvaluationMode = "scorer"
	ModeStandard EvaluationMode = "standard"
	ModeBoth     EvaluationMode = "both"
)

// TaskType is the caller-declared domain of an experiment, used to select
// default metric families when no explicit metrics map is supplied.
type TaskType string

const (
	TaskChatbot TaskType = "chatbot"
	TaskRAG     TaskType = "rag"
	TaskAgent   TaskType = "agent"
	TaskSafety  TaskType = "safety"
)

// ModelSpec identifies the target (or judge) LLM for a run, carried
// explicitly through config rather than via process environment.
type ModelSpec struct {
	Name        string
	Provider    string
	APIKey      string
	EndpointURL string
}

// ScenarioSeed is one simulated-conversation scenario carried in an
// experiment's dataset config.
type ScenarioSeed struct {
	Scenario        string
	ExpectedOutcome string
	UserDescription string
}

// ExperimentConfig is the structured config payload an Experiment is
// created with.
type ExperimentConfig struct {
	Model                ModelSpec
	JudgeLLM             ModelSpec
	JudgeMaxTokens       int
	DatasetUseBuiltin    string
	DatasetPath          string
	DatasetPrompts       []string
	DatasetConversations []string
	SimulatedMode        bool
	DatasetScenarios     []ScenarioSeed
	MaxTurns             int
	TaskType             TaskType
	EvaluationMode       EvaluationMode
	Metrics              map[string]bool
	Thresholds           map[string]float64
	SelectedScorers      []string
	ScorerAPIKeys        map[string]string
	QualityGate          map[string]float64
}

// Experiment is the top-level run record.
type Experiment struct {
	ID            string
	ProjectID     string
	Tenant        string
	Name          string
	Description   string
	Config        ExperimentConfig
	Status        ExperimentStatus
	Results       *ExperimentResults
	ErrorMessage  string
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// LogStatus is an EvaluationLog's per-sample outcome.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogError   LogStatus = "error"
)

// EvaluationLog is one record per sample attempt.
type EvaluationLog struct {
	ID            string
	ExperimentID  string
	Tenant        string
	ProjectID     string
	TraceID       string
	ParentTraceID string
	SpanName      string
	InputText     string
	OutputText    string
	ModelName     string
	LatencyMS     int64
	TokenCount    int
	Cost          float64
	Status        LogStatus
	ErrorMessage  string
	Metadata      map[string]any
}

// EvaluationMetric is one numeric aggregate per (experiment, metric_name).
type EvaluationMetric struct {
	ID           string
	ExperimentID string
	MetricName   string
	MetricType   string // "performance" | "quality"
	Value        float64
	Dimensions   map[string]any
}

// ScorerType distinguishes custom LLM-judge scorers from other kinds.
type ScorerType string

const (
	ScorerTypeLLM     ScorerType = "llm"
	ScorerTypeBuiltin ScorerType = "builtin"
	ScorerTypeCustom  ScorerType = "custom"
)

// ScorerMessage is one templated message in a scorer's judge prompt. The
// template may reference {{input}}, {{output}}, and {{expected}}.
type ScorerMessage struct {
	Role     string `json:"role"`
	Template string `json:"template"`
}

// ScorerDefinition is a stored custom LLM-as-judge scorer.
// JudgeModel, Messages, ChoiceScores, MaxTokens, and PassThreshold together
// form the scorer's `config` payload.
type ScorerDefinition struct {
	ID               string
	ProjectID        string
	Tenant           string
	Name             string
	Description      string
	Type             ScorerType
	MetricKey        string
	Enabled          bool
	DefaultThreshold float64
	Weight           float64
	JudgeModel       ModelSpec
	Messages         []ScorerMessage
	ChoiceScores     map[string]float64
	MaxTokens        int
	PassThreshold    *float64
}

// GatekeeperResult is the supplemented quality-gate summary attached to
// ExperimentResults when a QualityGate suite is configured.
type GatekeeperResult struct {
	Passed        bool
	CheckedMetrics []string
	FailReasons    []string
}

// ExperimentResults is the aggregated outcome attached to a completed
// Experiment.
type ExperimentResults struct {
	TotalPrompts    int
	AvgScores       map[string]float64
	DetailedResults []DetailedResult
	Gatekeeper      *GatekeeperResult
}

// DetailedResult is one entry in ExperimentResults.DetailedResults: the
// first 10 samples in dataset order.
type DetailedResult struct {
	Input      string
	Output     string
	Scores     map[string]float64
}
