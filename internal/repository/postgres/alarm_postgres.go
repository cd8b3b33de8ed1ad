package postgres

import (
	"context"
	"database/sql"
	"time"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

// AlarmPostgres is a PostgreSQL implementation of repository.AlarmRepository.
type AlarmPostgres struct {
	db *sql.DB
}

// NewAlarmPostgres creates a new AlarmPostgres repository.
func NewAlarmPostgres(db *sql.DB) *AlarmPostgres {
	return &AlarmPostgres{db: db}
}

var _ repository.AlarmRepository = (*AlarmPostgres)(nil)

const alarmColumns = `name, pipeline_name, metric_name, threshold, comparison_operator,
		evaluation_periods, datapoints_to_alarm, period_seconds, statistic,
		state, state_updated_at, created_at`

// Create inserts an alarm row.
func (r *AlarmPostgres) Create(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	const q = `
		INSERT INTO alarms (name, pipeline_name, metric_name, threshold, comparison_operator,
			evaluation_periods, datapoints_to_alarm, period_seconds, statistic, state, state_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + alarmColumns
	row := r.db.QueryRowContext(ctx, q,
		a.Name,
		a.PipelineName,
		a.MetricName,
		a.Threshold,
		a.ComparisonOperator,
		a.EvaluationPeriods,
		a.DatapointsToAlarm,
		a.PeriodSeconds,
		a.Statistic,
		a.State,
		a.CreatedAt,
	)
	return scanAlarm(row)
}

// Upsert inserts an alarm or refreshes its threshold configuration,
// preserving the current state on conflict.
func (r *AlarmPostgres) Upsert(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	const q = `
		INSERT INTO alarms (name, pipeline_name, metric_name, threshold, comparison_operator,
			evaluation_periods, datapoints_to_alarm, period_seconds, statistic, state, state_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (name) DO UPDATE SET
			pipeline_name = EXCLUDED.pipeline_name,
			metric_name = EXCLUDED.metric_name,
			threshold = EXCLUDED.threshold,
			comparison_operator = EXCLUDED.comparison_operator,
			evaluation_periods = EXCLUDED.evaluation_periods,
			datapoints_to_alarm = EXCLUDED.datapoints_to_alarm,
			period_seconds = EXCLUDED.period_seconds,
			statistic = EXCLUDED.statistic
		RETURNING ` + alarmColumns
	row := r.db.QueryRowContext(ctx, q,
		a.Name,
		a.PipelineName,
		a.MetricName,
		a.Threshold,
		a.ComparisonOperator,
		a.EvaluationPeriods,
		a.DatapointsToAlarm,
		a.PeriodSeconds,
		a.Statistic,
		a.State,
		a.CreatedAt,
	)
	return scanAlarm(row)
}

// Find fetches a single alarm by name.
func (r *AlarmPostgres) Find(ctx context.Context, name string) (*model.Alarm, error) {
	const q = `SELECT ` + alarmColumns + ` FROM alarms WHERE name = $1`
	return scanAlarm(r.db.QueryRowContext(ctx, q, name))
}

// FindByMetric returns all alarms watching a metric name.
func (r *AlarmPostgres) FindByMetric(ctx context.Context, metricName string) ([]model.Alarm, error) {
	const q = `SELECT ` + alarmColumns + ` FROM alarms WHERE metric_name = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, metricName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Alarm, 0)
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List returns alarms using LIMIT/OFFSET pagination and a total count.
func (r *AlarmPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Alarm], error) {
	const qCount = `SELECT COUNT(*) FROM alarms`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + alarmColumns + ` FROM alarms ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Alarm, 0)
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Alarm]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateState sets the alarm state and transition time.
func (r *AlarmPostgres) UpdateState(ctx context.Context, name string, state model.AlarmState) error {
	const q = `UPDATE alarms SET state = $2, state_updated_at = now() WHERE name = $1`
	res, err := r.db.ExecContext(ctx, q, name, state)
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

// AppendDatapoint records an observed metric value for an alarm.
func (r *AlarmPostgres) AppendDatapoint(ctx context.Context, alarmName string, value float64, observedAt time.Time) error {
	const q = `INSERT INTO alarm_datapoints (alarm_name, value, observed_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, q, alarmName, value, observedAt)
	return err
}

// RecentDatapoints returns the last n observed values, newest first.
func (r *AlarmPostgres) RecentDatapoints(ctx context.Context, alarmName string, n int) ([]float64, error) {
	const q = `
		SELECT value
		FROM alarm_datapoints
		WHERE alarm_name = $1
		ORDER BY observed_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, alarmName, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]float64, 0, n)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func scanAlarm(row rowScanner) (*model.Alarm, error) {
	var a model.Alarm
	if err := row.Scan(
		&a.Name,
		&a.PipelineName,
		&a.MetricName,
		&a.Threshold,
		&a.ComparisonOperator,
		&a.EvaluationPeriods,
		&a.DatapointsToAlarm,
		&a.PeriodSeconds,
		&a.Statistic,
		&a.State,
		&a.StateUpdatedAt,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
