// Package memory implements the Persistence Adapter contract entirely
// in-process. It backs unit tests and the CLI's store-less dry runs, and
// doubles as the reference implementation of the contract invariants the
// Postgres store must also honor: tenant scoping on every operation,
// terminal experiment status, shallow metadata merge, and cascade delete of
// an experiment's logs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evalengine/core/internal/store"
)

// Store is an in-memory, mutex-guarded implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	experiments map[string]map[string]*store.Experiment    // tenant -> id
	logs        map[string][]*store.EvaluationLog          // tenant -> insert order
	metrics     map[string][]*store.EvaluationMetric       // tenant -> insert order
	scorers     map[string]map[string]*store.ScorerDefinition // tenant -> id
	arenas      map[string]map[string]*store.ArenaComparison  // tenant -> id
	jobStatus   map[string]string                          // tenant/jobID

	// now is swappable for tests that assert timestamp transitions.
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		experiments: make(map[string]map[string]*store.Experiment),
		logs:        make(map[string][]*store.EvaluationLog),
		metrics:     make(map[string][]*store.EvaluationMetric),
		scorers:     make(map[string]map[string]*store.ScorerDefinition),
		arenas:      make(map[string]map[string]*store.ArenaComparison),
		jobStatus:   make(map[string]string),
		now:         time.Now,
	}
}

func mustTenant(tenant string) {
	if tenant == "" {
		panic("store: missing tenant")
	}
}

func (s *Store) CreateExperiment(ctx context.Context, tenant string, exp *store.Experiment) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.experiments[tenant] == nil {
		s.experiments[tenant] = make(map[string]*store.Experiment)
	}
	if _, exists := s.experiments[tenant][exp.ID]; exists {
		return fmt.Errorf("experiment %s already exists", exp.ID)
	}
	cp := *exp
	cp.Tenant = tenant
	if cp.Status == "" {
		cp.Status = store.StatusPending
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.experiments[tenant][exp.ID] = &cp
	return nil
}

func isTerminal(status store.ExperimentStatus) bool {
	return status == store.StatusCompleted || status == store.StatusFailed
}

func (s *Store) UpdateExperimentStatus(ctx context.Context, tenant, experimentID string, status store.ExperimentStatus, errMsg string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.experiments[tenant][experimentID]
	if !ok {
		return store.ErrNotFound
	}
	if isTerminal(exp.Status) && !isTerminal(status) {
		return fmt.Errorf("experiment %s is %s: %w", experimentID, exp.Status, store.ErrTerminalStatus)
	}

	now := s.now()
	if status == store.StatusRunning && exp.Status != store.StatusRunning {
		exp.StartedAt = &now
	}
	if isTerminal(status) && exp.CompletedAt == nil {
		exp.CompletedAt = &now
	}
	exp.Status = status
	if status == store.StatusFailed {
		exp.ErrorMessage = errMsg
	}
	return nil
}

func (s *Store) UpdateExperiment(ctx context.Context, tenant string, exp *store.Experiment) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.experiments[tenant][exp.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = exp.Name
	existing.Description = exp.Description
	existing.Config = exp.Config
	existing.Results = exp.Results
	return nil
}

func (s *Store) DeleteExperiment(ctx context.Context, tenant, experimentID string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.experiments[tenant][experimentID]; !ok {
		return store.ErrNotFound
	}
	delete(s.experiments[tenant], experimentID)

	// Cascade to logs; metrics stay readable but orphaned.
	kept := s.logs[tenant][:0]
	for _, log := range s.logs[tenant] {
		if log.ExperimentID != experimentID {
			kept = append(kept, log)
		}
	}
	s.logs[tenant] = kept
	return nil
}

func (s *Store) GetExperimentByID(ctx context.Context, tenant, experimentID string) (*store.Experiment, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.experiments[tenant][experimentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *exp
	return &cp, nil
}

func matchExperiment(exp *store.Experiment, filter store.ListFilter) bool {
	if filter.ProjectID != "" && exp.ProjectID != filter.ProjectID {
		return false
	}
	if filter.Status != "" && string(exp.Status) != filter.Status {
		return false
	}
	return true
}

func (s *Store) GetExperiments(ctx context.Context, tenant string, filter store.ListFilter) ([]*store.Experiment, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Experiment
	for _, exp := range s.experiments[tenant] {
		if matchExperiment(exp, filter) {
			cp := *exp
			out = append(out, &cp)
		}
	}
	sortByCreatedAt(out)
	return paginate(out, filter), nil
}

func (s *Store) GetExperimentCount(ctx context.Context, tenant string, filter store.ListFilter) (int, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, exp := range s.experiments[tenant] {
		if matchExperiment(exp, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateLog(ctx context.Context, tenant string, log *store.EvaluationLog) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *log
	cp.Tenant = tenant
	s.logs[tenant] = append(s.logs[tenant], &cp)
	return nil
}

func (s *Store) UpdateLogMetadata(ctx context.Context, tenant, logID string, metadata map[string]any) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, log := range s.logs[tenant] {
		if log.ID == logID {
			log.Metadata = store.MergeMetadata(log.Metadata, metadata)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetLogs(ctx context.Context, tenant, experimentID string, filter store.ListFilter) ([]*store.EvaluationLog, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.EvaluationLog
	for _, log := range s.logs[tenant] {
		if log.ExperimentID != experimentID {
			continue
		}
		if filter.Status != "" && string(log.Status) != filter.Status {
			continue
		}
		cp := *log
		out = append(out, &cp)
	}
	return paginate(out, filter), nil
}

func (s *Store) GetLogCount(ctx context.Context, tenant, experimentID string) (int, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, log := range s.logs[tenant] {
		if log.ExperimentID == experimentID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateMetric(ctx context.Context, tenant string, metric *store.EvaluationMetric) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *metric
	s.metrics[tenant] = append(s.metrics[tenant], &cp)
	return nil
}

func (s *Store) GetMetricAggregates(ctx context.Context, tenant, experimentID string) ([]*store.EvaluationMetric, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.EvaluationMetric
	for _, m := range s.metrics[tenant] {
		if m.ExperimentID == experimentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListScorers(ctx context.Context, tenant, projectID string) ([]*store.ScorerDefinition, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.ScorerDefinition
	for _, def := range s.scorers[tenant] {
		if projectID != "" && def.ProjectID != "" && def.ProjectID != projectID {
			continue
		}
		cp := *def
		out = append(out, &cp)
	}
	sortScorers(out)
	return out, nil
}

func (s *Store) CreateScorer(ctx context.Context, tenant string, def *store.ScorerDefinition) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scorers[tenant] == nil {
		s.scorers[tenant] = make(map[string]*store.ScorerDefinition)
	}
	for _, existing := range s.scorers[tenant] {
		if existing.MetricKey == def.MetricKey && existing.ProjectID == def.ProjectID {
			return fmt.Errorf("scorer metric_key %q already exists in project %q", def.MetricKey, def.ProjectID)
		}
	}
	cp := *def
	cp.Tenant = tenant
	s.scorers[tenant][def.ID] = &cp
	return nil
}

func (s *Store) UpdateScorer(ctx context.Context, tenant string, def *store.ScorerDefinition) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scorers[tenant][def.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range s.scorers[tenant] {
		if id != def.ID && existing.MetricKey == def.MetricKey && existing.ProjectID == def.ProjectID {
			return fmt.Errorf("scorer metric_key %q already exists in project %q", def.MetricKey, def.ProjectID)
		}
	}
	cp := *def
	cp.Tenant = tenant
	s.scorers[tenant][def.ID] = &cp
	return nil
}

func (s *Store) DeleteScorer(ctx context.Context, tenant, scorerID string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scorers[tenant][scorerID]; !ok {
		return store.ErrNotFound
	}
	delete(s.scorers[tenant], scorerID)
	return nil
}

func (s *Store) GetScorerByID(ctx context.Context, tenant, scorerID string) (*store.ScorerDefinition, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.scorers[tenant][scorerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *def
	return &cp, nil
}

func (s *Store) CreateArenaComparison(ctx context.Context, tenant string, arena *store.ArenaComparison) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.arenas[tenant] == nil {
		s.arenas[tenant] = make(map[string]*store.ArenaComparison)
	}
	if _, exists := s.arenas[tenant][arena.ID]; exists {
		return fmt.Errorf("arena comparison %s already exists", arena.ID)
	}
	cp := *arena
	cp.Tenant = tenant
	if cp.Status == "" {
		cp.Status = store.ArenaPending
	}
	s.arenas[tenant][arena.ID] = &cp
	return nil
}

func (s *Store) UpdateArenaComparison(ctx context.Context, tenant string, arena *store.ArenaComparison) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.arenas[tenant][arena.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *arena
	cp.Tenant = tenant
	s.arenas[tenant][arena.ID] = &cp
	return nil
}

func (s *Store) GetArenaComparison(ctx context.Context, tenant, arenaID string) (*store.ArenaComparison, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	arena, ok := s.arenas[tenant][arenaID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *arena
	return &cp, nil
}

func (s *Store) ListArenaComparisons(ctx context.Context, tenant string, filter store.ListFilter) ([]*store.ArenaComparison, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.ArenaComparison
	for _, arena := range s.arenas[tenant] {
		if filter.Status != "" && string(arena.Status) != filter.Status {
			continue
		}
		cp := *arena
		out = append(out, &cp)
	}
	sortArenas(out)
	return paginate(out, filter), nil
}

func (s *Store) DeleteArenaComparison(ctx context.Context, tenant, arenaID string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.arenas[tenant][arenaID]; !ok {
		return store.ErrNotFound
	}
	delete(s.arenas[tenant], arenaID)
	return nil
}

func jobKey(tenant, jobID string) string { return tenant + "/" + jobID }

func (s *Store) GetJobStatus(ctx context.Context, tenant, jobID string) (string, error) {
	mustTenant(tenant)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobStatus[jobKey(tenant, jobID)], nil
}

func (s *Store) SetJobStatus(ctx context.Context, tenant, jobID, status string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobStatus[jobKey(tenant, jobID)] = status
	return nil
}

func (s *Store) DeleteJobStatus(ctx context.Context, tenant, jobID string) error {
	mustTenant(tenant)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobStatus, jobKey(tenant, jobID))
	return nil
}

func paginate[T any](items []T, filter store.ListFilter) []T {
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items
}
