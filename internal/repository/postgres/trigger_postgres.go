package postgres

import (
	"context"
	"database/sql"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

// TriggerPostgres is a PostgreSQL implementation of repository.TriggerRepository.
type TriggerPostgres struct {
	db *sql.DB
}

// NewTriggerPostgres creates a new TriggerPostgres repository.
func NewTriggerPostgres(db *sql.DB) *TriggerPostgres {
	return &TriggerPostgres{db: db}
}

var _ repository.TriggerRepository = (*TriggerPostgres)(nil)

// Create inserts a trigger rule row.
func (r *TriggerPostgres) Create(ctx context.Context, t *model.TriggerRule) (*model.TriggerRule, error) {
	const q = `
		INSERT INTO trigger_rules (name, pipeline_name, kind, schedule_expression, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING name, pipeline_name, kind, schedule_expression, enabled, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		t.Name,
		t.PipelineName,
		t.Kind,
		t.ScheduleExpression,
		t.Enabled,
		t.CreatedAt,
	)
	var out model.TriggerRule
	if err := row.Scan(
		&out.Name,
		&out.PipelineName,
		&out.Kind,
		&out.ScheduleExpression,
		&out.Enabled,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// Find fetches a single rule by name.
func (r *TriggerPostgres) Find(ctx context.Context, name string) (*model.TriggerRule, error) {
	const q = `
		SELECT name, pipeline_name, kind, schedule_expression, enabled, created_at
		FROM trigger_rules
		WHERE name = $1
	`
	row := r.db.QueryRowContext(ctx, q, name)
	var t model.TriggerRule
	if err := row.Scan(
		&t.Name,
		&t.PipelineName,
		&t.Kind,
		&t.ScheduleExpression,
		&t.Enabled,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByPipeline returns all rules targeting a pipeline.
func (r *TriggerPostgres) ListByPipeline(ctx context.Context, pipeline string) ([]model.TriggerRule, error) {
	const q = `
		SELECT name, pipeline_name, kind, schedule_expression, enabled, created_at
		FROM trigger_rules
		WHERE pipeline_name = $1
		ORDER BY name
	`
	return r.queryRules(ctx, q, pipeline)
}

// ListEnabledSchedules returns all enabled schedule-kind rules.
func (r *TriggerPostgres) ListEnabledSchedules(ctx context.Context) ([]model.TriggerRule, error) {
	const q = `
		SELECT name, pipeline_name, kind, schedule_expression, enabled, created_at
		FROM trigger_rules
		WHERE kind = 'schedule' AND enabled
		ORDER BY name
	`
	return r.queryRules(ctx, q)
}

// SetEnabled toggles a rule; sql.ErrNoRows signals a missing rule.
func (r *TriggerPostgres) SetEnabled(ctx context.Context, name string, enabled bool) error {
	const q = `UPDATE trigger_rules SET enabled = $2 WHERE name = $1`
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

func (r *TriggerPostgres) queryRules(ctx context.Context, q string, args ...any) ([]model.TriggerRule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TriggerRule, 0)
	for rows.Next() {
		var t model.TriggerRule
		if err := rows.Scan(
			&t.Name,
			&t.PipelineName,
			&t.Kind,
			&t.ScheduleExpression,
			&t.Enabled,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
