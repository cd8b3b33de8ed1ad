package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

var alarmTestColumns = []string{
	"name", "pipeline_name", "metric_name", "threshold", "comparison_operator",
	"evaluation_periods", "datapoints_to_alarm", "period_seconds", "statistic",
	"state", "state_updated_at", "created_at",
}

func testAlarm(now time.Time) *model.Alarm {
	return &model.Alarm{
		Name:               "churn-prod-threshold",
		PipelineName:       "churn-build",
		MetricName:         "feature_baseline_drift_total_amount",
		Threshold:          0.4,
		ComparisonOperator: model.GreaterThanThreshold,
		EvaluationPeriods:  3,
		DatapointsToAlarm:  2,
		PeriodSeconds:      3600,
		Statistic:          "Average",
		State:              model.AlarmStateInsufficientData,
		CreatedAt:          now,
	}
}

func alarmRow(a *model.Alarm, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(alarmTestColumns).AddRow(
		a.Name, a.PipelineName, a.MetricName, a.Threshold, string(a.ComparisonOperator),
		a.EvaluationPeriods, a.DatapointsToAlarm, a.PeriodSeconds, a.Statistic,
		string(a.State), now, now,
	)
}

func TestAlarmPostgres_Upsert(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewAlarmPostgres(db)

	a := testAlarm(now)

	mock.ExpectQuery("INSERT INTO alarms").
		WithArgs(a.Name, a.PipelineName, a.MetricName, a.Threshold, a.ComparisonOperator,
			a.EvaluationPeriods, a.DatapointsToAlarm, a.PeriodSeconds, a.Statistic,
			a.State, a.CreatedAt).
		WillReturnRows(alarmRow(a, now))

	out, err := repo.Upsert(context.Background(), a)

	require.NoError(t, err)
	assert.Equal(t, a.Name, out.Name)
	assert.Equal(t, model.AlarmStateInsufficientData, out.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmPostgres_Find(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM alarms").
			WithArgs("churn-prod-threshold").
			WillReturnRows(alarmRow(testAlarm(now), now))

		a, err := repo.Find(context.Background(), "churn-prod-threshold")

		require.NoError(t, err)
		assert.Equal(t, 0.4, a.Threshold)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM alarms").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Find(context.Background(), "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestAlarmPostgres_FindByMetric(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewAlarmPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM alarms").
		WithArgs("feature_baseline_drift_total_amount").
		WillReturnRows(alarmRow(testAlarm(now), now))

	alarms, err := repo.FindByMetric(context.Background(), "feature_baseline_drift_total_amount")

	require.NoError(t, err)
	require.Len(t, alarms, 1)
	assert.Equal(t, "churn-build", alarms[0].PipelineName)
}

func TestAlarmPostgres_List(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewAlarmPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM alarms").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM alarms").
		WithArgs(10, 0).
		WillReturnRows(alarmRow(testAlarm(now), now))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
}

func TestAlarmPostgres_UpdateState(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectExec("UPDATE alarms SET state").
			WithArgs("churn-prod-threshold", model.AlarmStateAlarm).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateState(context.Background(), "churn-prod-threshold", model.AlarmStateAlarm))
	})

	t.Run("unknown alarm", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectExec("UPDATE alarms SET state").
			WithArgs("missing", model.AlarmStateOK).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateState(context.Background(), "missing", model.AlarmStateOK)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestAlarmPostgres_Datapoints(t *testing.T) {
	now := time.Now().UTC()

	t.Run("append", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectExec("INSERT INTO alarm_datapoints").
			WithArgs("churn-prod-threshold", 0.42, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.AppendDatapoint(context.Background(), "churn-prod-threshold", 0.42, now))
	})

	t.Run("recent newest first", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAlarmPostgres(db)

		mock.ExpectQuery("SELECT value FROM alarm_datapoints").
			WithArgs("churn-prod-threshold", 3).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).
				AddRow(0.45).AddRow(0.42).AddRow(0.12))

		values, err := repo.RecentDatapoints(context.Background(), "churn-prod-threshold", 3)

		require.NoError(t, err)
		assert.Equal(t, []float64{0.45, 0.42, 0.12}, values)
	})
}
