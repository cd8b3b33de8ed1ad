package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

// PipelinePostgres is a PostgreSQL implementation of repository.PipelineRepository.
type PipelinePostgres struct {
	db *sql.DB
}

// NewPipelinePostgres creates a new PipelinePostgres repository.
func NewPipelinePostgres(db *sql.DB) *PipelinePostgres {
	return &PipelinePostgres{db: db}
}

var _ repository.PipelineRepository = (*PipelinePostgres)(nil)

// CreatePipeline inserts a pipeline row.
func (r *PipelinePostgres) CreatePipeline(ctx context.Context, p *model.Pipeline) (*model.Pipeline, error) {
	const q = `
		INSERT INTO pipelines (name, kind, definition_path, build_transition_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING name, kind, definition_path, build_transition_enabled, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		p.Name,
		p.Kind,
		p.DefinitionPath,
		p.BuildTransitionEnabled,
		p.CreatedAt,
	)
	var out model.Pipeline
	if err := row.Scan(
		&out.Name,
		&out.Kind,
		&out.DefinitionPath,
		&out.BuildTransitionEnabled,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindPipeline fetches a single pipeline by name.
func (r *PipelinePostgres) FindPipeline(ctx context.Context, name string) (*model.Pipeline, error) {
	const q = `
		SELECT name, kind, definition_path, build_transition_enabled, created_at
		FROM pipelines
		WHERE name = $1
	`
	row := r.db.QueryRowContext(ctx, q, name)
	var p model.Pipeline
	if err := row.Scan(
		&p.Name,
		&p.Kind,
		&p.DefinitionPath,
		&p.BuildTransitionEnabled,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPipelines returns all pipelines ordered by name.
func (r *PipelinePostgres) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	const q = `
		SELECT name, kind, definition_path, build_transition_enabled, created_at
		FROM pipelines
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Pipeline, 0)
	for rows.Next() {
		var p model.Pipeline
		if err := rows.Scan(
			&p.Name,
			&p.Kind,
			&p.DefinitionPath,
			&p.BuildTransitionEnabled,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetBuildTransition toggles the pipeline's inbound transition.
func (r *PipelinePostgres) SetBuildTransition(ctx context.Context, name string, enabled bool) error {
	const q = `UPDATE pipelines SET build_transition_enabled = $2 WHERE name = $1`
	res, err := r.db.ExecContext(ctx, q, name, enabled)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateExecution inserts an execution row.
func (r *PipelinePostgres) CreateExecution(ctx context.Context, e *model.PipelineExecution) (*model.PipelineExecution, error) {
	params, err := json.Marshal(e.Parameters)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO pipeline_executions (id, pipeline_name, display_name, status, client_request_token, parameters, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, pipeline_name, display_name, status, client_request_token, parameters, started_at, finished_at
	`
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.PipelineName,
		e.DisplayName,
		e.Status,
		e.ClientRequestToken,
		params,
		e.StartedAt,
	)
	return scanExecution(row)
}

// FindExecution fetches a single execution by ID.
func (r *PipelinePostgres) FindExecution(ctx context.Context, id string) (*model.PipelineExecution, error) {
	const q = `
		SELECT id, pipeline_name, display_name, status, client_request_token, parameters, started_at, finished_at
		FROM pipeline_executions
		WHERE id = $1
	`
	return scanExecution(r.db.QueryRowContext(ctx, q, id))
}

// FindExecutionByToken fetches the execution created with a client request token.
func (r *PipelinePostgres) FindExecutionByToken(ctx context.Context, token string) (*model.PipelineExecution, error) {
	const q = `
		SELECT id, pipeline_name, display_name, status, client_request_token, parameters, started_at, finished_at
		FROM pipeline_executions
		WHERE client_request_token = $1
	`
	return scanExecution(r.db.QueryRowContext(ctx, q, token))
}

// ListExecutions returns a pipeline's executions, newest first, with a total count.
func (r *PipelinePostgres) ListExecutions(ctx context.Context, pipeline string, pq repository.PageQuery) (*repository.PageResult[model.PipelineExecution], error) {
	const qCount = `SELECT COUNT(*) FROM pipeline_executions WHERE pipeline_name = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pipeline).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, pipeline_name, display_name, status, client_request_token, parameters, started_at, finished_at
		FROM pipeline_executions
		WHERE pipeline_name = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, pipeline, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PipelineExecution, 0)
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.PipelineExecution]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateExecutionStatus sets the status and finish time of an execution.
func (r *PipelinePostgres) UpdateExecutionStatus(ctx context.Context, id string, status model.ExecutionStatus, finishedAt *time.Time) error {
	const q = `UPDATE pipeline_executions SET status = $2, finished_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status, finishedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExecution(row rowScanner) (*model.PipelineExecution, error) {
	var (
		e      model.PipelineExecution
		params []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.PipelineName,
		&e.DisplayName,
		&e.Status,
		&e.ClientRequestToken,
		&params,
		&e.StartedAt,
		&e.FinishedAt,
	); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &e.Parameters); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
