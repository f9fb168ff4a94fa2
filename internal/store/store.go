package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by get_* operations when no matching tenant-scoped
// record exists.
var ErrNotFound = errors.New("store: not found")

// ErrTerminalStatus is returned when a status write would move an experiment
// out of completed/failed. Terminal states are final.
var ErrTerminalStatus = errors.New("store: experiment status is terminal")

// ListFilter narrows get_experiments / get_logs-style listings.
type ListFilter struct {
	ProjectID string
	Status    string
	Limit     int
	Offset    int
}

// Store is the C8 Persistence Adapter contract. Every method is
// tenant-scoped; a missing tenant is a programming error, not a runtime one,
// so implementations may panic rather than return an error for it.
type Store interface {
	CreateExperiment(ctx context.Context, tenant string, exp *Experiment) error
	UpdateExperimentStatus(ctx context.Context, tenant, experimentID string, status ExperimentStatus, errMsg string) error
	UpdateExperiment(ctx context.Context, tenant string, exp *Experiment) error
	DeleteExperiment(ctx context.Context, tenant, experimentID string) error
	GetExperimentByID(ctx context.Context, tenant, experimentID string) (*Experiment, error)
	GetExperiments(ctx context.Context, tenant string, filter ListFilter) ([]*Experiment, error)
	GetExperimentCount(ctx context.Context, tenant string, filter ListFilter) (int, error)

	CreateLog(ctx context.Context, tenant string, log *EvaluationLog) error
	UpdateLogMetadata(ctx context.Context, tenant, logID string, metadata map[string]any) error
	GetLogs(ctx context.Context, tenant, experimentID string, filter ListFilter) ([]*EvaluationLog, error)
	GetLogCount(ctx context.Context, tenant, experimentID string) (int, error)

	CreateMetric(ctx context.Context, tenant string, metric *EvaluationMetric) error
	GetMetricAggregates(ctx context.Context, tenant, experimentID string) ([]*EvaluationMetric, error)

	ListScorers(ctx context.Context, tenant, projectID string) ([]*ScorerDefinition, error)
	CreateScorer(ctx context.Context, tenant string, scorer *ScorerDefinition) error
	UpdateScorer(ctx context.Context, tenant string, scorer *ScorerDefinition) error
	DeleteScorer(ctx context.Context, tenant, scorerID string) error
	GetScorerByID(ctx context.Context, tenant, scorerID string) (*ScorerDefinition, error)

	CreateArenaComparison(ctx context.Context, tenant string, arena *ArenaComparison) error
	UpdateArenaComparison(ctx context.Context, tenant string, arena *ArenaComparison) error
	GetArenaComparison(ctx context.Context, tenant, arenaID string) (*ArenaComparison, error)
	ListArenaComparisons(ctx context.Context, tenant string, filter ListFilter) ([]*ArenaComparison, error)
	DeleteArenaComparison(ctx context.Context, tenant, arenaID string) error

	GetJobStatus(ctx context.Context, tenant, jobID string) (string, error)
	SetJobStatus(ctx context.Context, tenant, jobID, status string) error
	DeleteJobStatus(ctx context.Context, tenant, jobID string) error
}

// MergeMetadata performs the shallow metadata merge: top-level
// keys in patch overwrite matching keys in base; other base keys survive.
func MergeMetadata(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
