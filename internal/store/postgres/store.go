package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evalengine/core/internal/store"
)

// JobStatusStore is the ephemeral status mirror the durable store delegates
// get/set/delete_job_status to (internal/store/jobstatus's Redis Store in
// production). Nil disables mirroring: reads return "", writes are dropped.
type JobStatusStore interface {
	Get(ctx context.Context, tenant, jobID string) (string, error)
	Set(ctx context.Context, tenant, jobID, status string) error
	Delete(ctx context.Context, tenant, jobID string) error
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	db        *sql.DB
	jobStatus JobStatusStore
}

var _ store.Store = (*Store)(nil)

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

func mustTenant(tenant string) {
	if tenant == "" {
		panic("store: missing tenant")
	}
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (s *Store) CreateExperiment(ctx context.Context, tenant string, exp *store.Experiment) error {
	mustTenant(tenant)
	cfg, err := marshalJSON(exp.Config)
	if err != nil {
		return fmt.Errorf("postgres: marshal experiment config: %w", err)
	}
	status := exp.Status
	if status == "" {
		status = store.StatusPending
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO experiments (id, tenant, project_id, name, description, config, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		exp.ID, tenant, exp.ProjectID, exp.Name, exp.Description, cfg, status, exp.ErrorMessage)
	if err != nil {
		return fmt.Errorf("postgres: create experiment: %w", err)
	}
	return nil
}

func isTerminal(status store.ExperimentStatus) bool {
	return status == store.StatusCompleted || status == store.StatusFailed
}

func (s *Store) UpdateExperimentStatus(ctx context.Context, tenant, experimentID string, status store.ExperimentStatus, errMsg string) error {
	mustTenant(tenant)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM experiments WHERE tenant = $1 AND id = $2 FOR UPDATE`,
		tenant, experimentID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres: read status: %w", err)
	}
	if isTerminal(store.ExperimentStatus(current)) && !isTerminal(status) {
		return fmt.Errorf("experiment %s is %s: %w", experimentID, current, store.ErrTerminalStatus)
	}

	query := `UPDATE experiments SET status = $3`
	if status == store.StatusRunning && current != string(store.StatusRunning) {
		query += `, started_at = now()`
	}
	if isTerminal(status) {
		query += `, completed_at = COALESCE(completed_at, now())`
	}
	if status == store.StatusFailed {
		query += `, error_message = $4`
	}
	query += ` WHERE tenant = $1 AND id = $2`

	args := []any{tenant, experimentID, string(status)}
	if status == store.StatusFailed {
		args = append(args, errMsg)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: update status: %w", err)
	}
	return tx.Commit()
}

func (s *Store) UpdateExperiment(ctx context.Context, tenant string, exp *store.Experiment) error {
	mustTenant(tenant)
	cfg, err := marshalJSON(exp.Config)
	if err != nil {
		return fmt.Errorf("postgres: marshal experiment config: %w", err)
	}
	var results []byte
	if exp.Results != nil {
		results, err = marshalJSON(exp.Results)
		if err != nil {
			return fmt.Errorf("postgres: marshal experiment results: %w", err)
		}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE experiments
		SET name = $3, description = $4, config = $5, results = $6
		WHERE tenant = $1 AND id = $2`,
		tenant, exp.ID, exp.Name, exp.Description, cfg, results)
	if err != nil {
		return fmt.Errorf("postgres: update experiment: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteExperiment(ctx context.Context, tenant, experimentID string) error {
	mustTenant(tenant)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM experiments WHERE tenant = $1 AND id = $2`, tenant, experimentID)
	if err != nil {
		return fmt.Errorf("postgres: delete experiment: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	// Cascade to logs; metrics stay readable but orphaned.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM evaluation_logs WHERE tenant = $1 AND experiment_id = $2`, tenant, experimentID); err != nil {
		return fmt.Errorf("postgres: cascade logs: %w", err)
	}
	return tx.Commit()
}

const experimentColumns = `id, tenant, project_id, name, description, config, status, results, error_message, created_at, started_at, completed_at`

func scanExperiment(row interface{ Scan(...any) error }) (*store.Experiment, error) {
	var exp store.Experiment
	var cfg, results []byte
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&exp.ID, &exp.Tenant, &exp.ProjectID, &exp.Name, &exp.Description,
		&cfg, &exp.Status, &results, &exp.ErrorMessage, &exp.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &exp.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	if len(results) > 0 {
		exp.Results = &store.ExperimentResults{}
		if err := json.Unmarshal(results, exp.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	if startedAt.Valid {
		exp.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		exp.CompletedAt = &completedAt.Time
	}
	return &exp, nil
}

func (s *Store) GetExperimentByID(ctx context.Context, tenant, experimentID string) (*store.Experiment, error) {
	mustTenant(tenant)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+experimentColumns+` FROM experiments WHERE tenant = $1 AND id = $2`,
		tenant, experimentID)
	exp, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get experiment: %w", err)
	}
	return exp, nil
}

func listClauses(filter store.ListFilter, args []any) (string, []any) {
	var b strings.Builder
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		fmt.Fprintf(&b, " AND project_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	return b.String(), args
}

func (s *Store) GetExperiments(ctx context.Context, tenant string, filter store.ListFilter) ([]*store.Experiment, error) {
	mustTenant(tenant)
	query := `SELECT ` + experimentColumns + ` FROM experiments WHERE tenant = $1`
	args := []any{tenant}
	var clause string
	clause, args = listClauses(filter, args)
	query += clause + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list experiments: %w", err)
	}
	defer rows.Close()

	var out []*store.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan experiment: %w", err)
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

func (s *Store) GetExperimentCount(ctx context.Context, tenant string, filter store.ListFilter) (int, error) {
	mustTenant(tenant)
	query := `SELECT COUNT(*) FROM experiments WHERE tenant = $1`
	args := []any{tenant}
	var clause string
	clause, args = listClauses(filter, args)
	query += clause

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count experiments: %w", err)
	}
	return count, nil
}

func (s *Store) CreateLog(ctx context.Context, tenant string, log *store.EvaluationLog) error {
	mustTenant(tenant)
	metadata, err := marshalJSON(log.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: marshal log metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluation_logs
		(id, experiment_id, tenant, project_id, trace_id, parent_trace_id, span_name,
		 input_text, output_text, model_name, latency_ms, token_count, cost, status, error_message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		log.ID, log.ExperimentID, tenant, log.ProjectID, log.TraceID, log.ParentTraceID, log.SpanName,
		log.InputText, log.OutputText, log.ModelName, log.LatencyMS, log.TokenCount, log.Cost,
		log.Status, log.ErrorMessage, metadata)
	if err != nil {
		return fmt.Errorf("postgres: create log: %w", err)
	}
	return nil
}

func (s *Store) UpdateLogMetadata(ctx context.Context, tenant, logID string, metadata map[string]any) error {
	mustTenant(tenant)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing []byte
	err = tx.QueryRowContext(ctx,
		`SELECT metadata FROM evaluation_logs WHERE tenant = $1 AND id = $2 FOR UPDATE`,
		tenant, logID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres: read log metadata: %w", err)
	}

	base := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &base); err != nil {
			return fmt.Errorf("postgres: unmarshal log metadata: %w", err)
		}
	}
	merged, err := marshalJSON(store.MergeMetadata(base, metadata))
	if err != nil {
		return fmt.Errorf("postgres: marshal merged metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE evaluation_logs SET metadata = $3 WHERE tenant = $1 AND id = $2`,
		tenant, logID, merged); err != nil {
		return fmt.Errorf("postgres: update log metadata: %w", err)
	}
	return tx.Commit()
}

const logColumns = `id, experiment_id, tenant, project_id, trace_id, parent_trace_id, span_name,
 input_text, output_text, model_name, latency_ms, token_count, cost, status, error_message, metadata`

func (s *Store) GetLogs(ctx context.Context, tenant, experimentID string, filter store.ListFilter) ([]*store.EvaluationLog, error) {
	mustTenant(tenant)
	query := `SELECT ` + logColumns + ` FROM evaluation_logs WHERE tenant = $1 AND experiment_id = $2`
	args := []any{tenant, experimentID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY seq`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list logs: %w", err)
	}
	defer rows.Close()

	var out []*store.EvaluationLog
	for rows.Next() {
		var log store.EvaluationLog
		var metadata []byte
		if err := rows.Scan(&log.ID, &log.ExperimentID, &log.Tenant, &log.ProjectID,
			&log.TraceID, &log.ParentTraceID, &log.SpanName,
			&log.InputText, &log.OutputText, &log.ModelName,
			&log.LatencyMS, &log.TokenCount, &log.Cost,
			&log.Status, &log.ErrorMessage, &metadata); err != nil {
			return nil, fmt.Errorf("postgres: scan log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &log.Metadata); err != nil {
				return nil, fmt.Errorf("postgres: unmarshal log metadata: %w", err)
			}
		}
		out = append(out, &log)
	}
	return out, rows.Err()
}

func (s *Store) GetLogCount(ctx context.Context, tenant, experimentID string) (int, error) {
	mustTenant(tenant)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evaluation_logs WHERE tenant = $1 AND experiment_id = $2`,
		tenant, experimentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count logs: %w", err)
	}
	return count, nil
}

func (s *Store) CreateMetric(ctx context.Context, tenant string, metric *store.EvaluationMetric) error {
	mustTenant(tenant)
	var dimensions []byte
	if metric.Dimensions != nil {
		var err error
		dimensions, err = marshalJSON(metric.Dimensions)
		if err != nil {
			return fmt.Errorf("postgres: marshal metric dimensions: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluation_metrics (id, tenant, experiment_id, metric_name, metric_type, value, dimensions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		metric.ID, tenant, metric.ExperimentID, metric.MetricName, metric.MetricType, metric.Value, dimensions)
	if err != nil {
		return fmt.Errorf("postgres: create metric: %w", err)
	}
	return nil
}

func (s *Store) GetMetricAggregates(ctx context.Context, tenant, experimentID string) ([]*store.EvaluationMetric, error) {
	mustTenant(tenant)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, experiment_id, metric_name, metric_type, value, dimensions
		FROM evaluation_metrics WHERE tenant = $1 AND experiment_id = $2
		ORDER BY metric_name`,
		tenant, experimentID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list metrics: %w", err)
	}
	defer rows.Close()

	var out []*store.EvaluationMetric
	for rows.Next() {
		var m store.EvaluationMetric
		var dimensions []byte
		if err := rows.Scan(&m.ID, &m.ExperimentID, &m.MetricName, &m.MetricType, &m.Value, &dimensions); err != nil {
			return nil, fmt.Errorf("postgres: scan metric: %w", err)
		}
		if len(dimensions) > 0 {
			if err := json.Unmarshal(dimensions, &m.Dimensions); err != nil {
				return nil, fmt.Errorf("postgres: unmarshal metric dimensions: %w", err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// scorerConfig is the JSONB shape of a scorer's config column.
type scorerConfig struct {
	JudgeModel    store.ModelSpec       `json:"judge_model"`
	Messages      []store.ScorerMessage `json:"messages"`
	ChoiceScores  map[string]float64    `json:"choice_scores"`
	MaxTokens     int                   `json:"max_tokens,omitempty"`
	PassThreshold *float64              `json:"pass_threshold,omitempty"`
}

func scorerConfigJSON(def *store.ScorerDefinition) ([]byte, error) {
	return marshalJSON(scorerConfig{
		JudgeModel:    def.JudgeModel,
		Messages:      def.Messages,
		ChoiceScores:  def.ChoiceScores,
		MaxTokens:     def.MaxTokens,
		PassThreshold: def.PassThreshold,
	})
}

func applyScorerConfig(def *store.ScorerDefinition, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var cfg scorerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}
	def.JudgeModel = cfg.JudgeModel
	def.Messages = cfg.Messages
	def.ChoiceScores = cfg.ChoiceScores
	def.MaxTokens = cfg.MaxTokens
	def.PassThreshold = cfg.PassThreshold
	return nil
}

func (s *Store) ListScorers(ctx context.Context, tenant, projectID string) ([]*store.ScorerDefinition, error) {
	mustTenant(tenant)
	query := `SELECT id, tenant, project_id, name, description, type, metric_key, enabled, default_threshold, weight, config
		FROM scorers WHERE tenant = $1`
	args := []any{tenant}
	if projectID != "" {
		args = append(args, projectID)
		query += ` AND (project_id = $2 OR project_id = '')`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scorers: %w", err)
	}
	defer rows.Close()

	var out []*store.ScorerDefinition
	for rows.Next() {
		var def store.ScorerDefinition
		var cfg []byte
		if err := rows.Scan(&def.ID, &def.Tenant, &def.ProjectID, &def.Name, &def.Description,
			&def.Type, &def.MetricKey, &def.Enabled, &def.DefaultThreshold, &def.Weight, &cfg); err != nil {
			return nil, fmt.Errorf("postgres: scan scorer: %w", err)
		}
		if err := applyScorerConfig(&def, cfg); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal scorer config: %w", err)
		}
		out = append(out, &def)
	}
	return out, rows.Err()
}

func (s *Store) CreateScorer(ctx context.Context, tenant string, def *store.ScorerDefinition) error {
	mustTenant(tenant)
	cfg, err := scorerConfigJSON(def)
	if err != nil {
		return fmt.Errorf("postgres: marshal scorer config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scorers (id, tenant, project_id, name, description, type, metric_key, enabled, default_threshold, weight, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		def.ID, tenant, def.ProjectID, def.Name, def.Description, def.Type, def.MetricKey,
		def.Enabled, def.DefaultThreshold, def.Weight, cfg)
	if err != nil {
		return fmt.Errorf("postgres: create scorer: %w", err)
	}
	return nil
}

func (s *Store) UpdateScorer(ctx context.Context, tenant string, def *store.ScorerDefinition) error {
	mustTenant(tenant)
	cfg, err := scorerConfigJSON(def)
	if err != nil {
		return fmt.Errorf("postgres: marshal scorer config: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE scorers
		SET name = $3, description = $4, type = $5, metric_key = $6, enabled = $7,
		    default_threshold = $8, weight = $9, config = $10
		WHERE tenant = $1 AND id = $2`,
		tenant, def.ID, def.Name, def.Description, def.Type, def.MetricKey,
		def.Enabled, def.DefaultThreshold, def.Weight, cfg)
	if err != nil {
		return fmt.Errorf("postgres: update scorer: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteScorer(ctx context.Context, tenant, scorerID string) error {
	mustTenant(tenant)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scorers WHERE tenant = $1 AND id = $2`, tenant, scorerID)
	if err != nil {
		return fmt.Errorf("postgres: delete scorer: %w", err)
	}
	return requireRow(res)
}

func (s *Store) GetScorerByID(ctx context.Context, tenant, scorerID string) (*store.ScorerDefinition, error) {
	mustTenant(tenant)
	var def store.ScorerDefinition
	var cfg []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant, project_id, name, description, type, metric_key, enabled, default_threshold, weight, config
		FROM scorers WHERE tenant = $1 AND id = $2`,
		tenant, scorerID).Scan(&def.ID, &def.Tenant, &def.ProjectID, &def.Name, &def.Description,
		&def.Type, &def.MetricKey, &def.Enabled, &def.DefaultThreshold, &def.Weight, &cfg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get scorer: %w", err)
	}
	if err := applyScorerConfig(&def, cfg); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal scorer config: %w", err)
	}
	return &def, nil
}

func (s *Store) CreateArenaComparison(ctx context.Context, tenant string, arena *store.ArenaComparison) error {
	mustTenant(tenant)
	contestants, err := marshalJSON(arena.Contestants)
	if err != nil {
		return fmt.Errorf("postgres: marshal contestants: %w", err)
	}
	status := arena.Status
	if status == "" {
		status = store.ArenaPending
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO arena_comparisons
		(id, tenant, org_id, name, description, contestants, metric_name, criteria, dataset_path, judge_model, status, progress, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		arena.ID, tenant, arena.OrgID, arena.Name, arena.Description, contestants,
		arena.MetricName, arena.Criteria, arena.DatasetPath, arena.JudgeModel,
		status, arena.Progress, arena.ErrorMessage)
	if err != nil {
		return fmt.Errorf("postgres: create arena comparison: %w", err)
	}
	return nil
}

func (s *Store) UpdateArenaComparison(ctx context.Context, tenant string, arena *store.ArenaComparison) error {
	mustTenant(tenant)
	contestants, err := marshalJSON(arena.Contestants)
	if err != nil {
		return fmt.Errorf("postgres: marshal contestants: %w", err)
	}
	var results []byte
	if arena.Results != nil {
		results, err = marshalJSON(arena.Results)
		if err != nil {
			return fmt.Errorf("postgres: marshal arena results: %w", err)
		}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE arena_comparisons
		SET name = $3, description = $4, contestants = $5, metric_name = $6, criteria = $7,
		    dataset_path = $8, judge_model = $9, status = $10, progress = $11, results = $12, error_message = $13
		WHERE tenant = $1 AND id = $2`,
		tenant, arena.ID, arena.Name, arena.Description, contestants, arena.MetricName, arena.Criteria,
		arena.DatasetPath, arena.JudgeModel, arena.Status, arena.Progress, results, arena.ErrorMessage)
	if err != nil {
		return fmt.Errorf("postgres: update arena comparison: %w", err)
	}
	return requireRow(res)
}

const arenaColumns = `id, tenant, org_id, name, description, contestants, metric_name, criteria, dataset_path, judge_model, status, progress, results, error_message`

func scanArena(row interface{ Scan(...any) error }) (*store.ArenaComparison, error) {
	var arena store.ArenaComparison
	var contestants, results []byte
	err := row.Scan(&arena.ID, &arena.Tenant, &arena.OrgID, &arena.Name, &arena.Description,
		&contestants, &arena.MetricName, &arena.Criteria, &arena.DatasetPath, &arena.JudgeModel,
		&arena.Status, &arena.Progress, &results, &arena.ErrorMessage)
	if err != nil {
		return nil, err
	}
	if len(contestants) > 0 {
		if err := json.Unmarshal(contestants, &arena.Contestants); err != nil {
			return nil, fmt.Errorf("unmarshal contestants: %w", err)
		}
	}
	if len(results) > 0 {
		arena.Results = &store.ArenaResults{}
		if err := json.Unmarshal(results, arena.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return &arena, nil
}

func (s *Store) GetArenaComparison(ctx context.Context, tenant, arenaID string) (*store.ArenaComparison, error) {
	mustTenant(tenant)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+arenaColumns+` FROM arena_comparisons WHERE tenant = $1 AND id = $2`,
		tenant, arenaID)
	arena, err := scanArena(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get arena comparison: %w", err)
	}
	return arena, nil
}

func (s *Store) ListArenaComparisons(ctx context.Context, tenant string, filter store.ListFilter) ([]*store.ArenaComparison, error) {
	mustTenant(tenant)
	query := `SELECT ` + arenaColumns + ` FROM arena_comparisons WHERE tenant = $1`
	args := []any{tenant}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY name, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list arena comparisons: %w", err)
	}
	defer rows.Close()

	var out []*store.ArenaComparison
	for rows.Next() {
		arena, err := scanArena(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan arena comparison: %w", err)
		}
		out = append(out, arena)
	}
	return out, rows.Err()
}

func (s *Store) DeleteArenaComparison(ctx context.Context, tenant, arenaID string) error {
	mustTenant(tenant)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM arena_comparisons WHERE tenant = $1 AND id = $2`, tenant, arenaID)
	if err != nil {
		return fmt.Errorf("postgres: delete arena comparison: %w", err)
	}
	return requireRow(res)
}

func (s *Store) GetJobStatus(ctx context.Context, tenant, jobID string) (string, error) {
	mustTenant(tenant)
	if s.jobStatus == nil {
		return "", nil
	}
	return s.jobStatus.Get(ctx, tenant, jobID)
}

func (s *Store) SetJobStatus(ctx context.Context, tenant, jobID, status string) error {
	mustTenant(tenant)
	if s.jobStatus == nil {
		return nil
	}
	return s.jobStatus.Set(ctx, tenant, jobID, status)
}

func (s *Store) DeleteJobStatus(ctx context.Context, tenant, jobID string) error {
	mustTenant(tenant)
	if s.jobStatus == nil {
		return nil
	}
	return s.jobStatus.Delete(ctx, tenant, jobID)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
