package repository

import (
	"context"
	"time"

	"driftwatch/internal/model"
)

// AlarmRepository defines data access for drift alarms and their datapoints.
type AlarmRepository interface {
	// Create inserts an alarm.
	Create(ctx context.Context, a *model.Alarm) (*model.Alarm, error)

	// Upsert inserts an alarm or updates its threshold configuration in place,
	// preserving the current state.
	Upsert(ctx context.Context, a *model.Alarm) (*model.Alarm, error)

	// Find returns an alarm by name.
	Find(ctx context.Context, name string) (*model.Alarm, error)

	// FindByMetric returns all alarms watching a metric name.
	FindByMetric(ctx context.Context, metricName string) ([]model.Alarm, error)

	// List returns a paginated list of alarms.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Alarm], error)

	// UpdateState sets the alarm state and its transition time.
	UpdateState(ctx context.Context, name string, state model.AlarmState) error

	// AppendDatapoint records an observed metric value for an alarm.
	AppendDatapoint(ctx context.Context, alarmName string, value float64, observedAt time.Time) error

	// RecentDatapoints returns the last n observed values, newest first.
	RecentDatapoints(ctx context.Context, alarmName string, n int) ([]float64, error)
}
