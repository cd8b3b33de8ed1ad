package mocks

import (
	"context"
	"time"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockAlarmRepository struct {
	mock.Mock
}

func (m *MockAlarmRepository) Create(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmRepository) Upsert(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmRepository) Find(ctx context.Context, name string) (*model.Alarm, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmRepository) FindByMetric(ctx context.Context, metricName string) ([]model.Alarm, error) {
	args := m.Called(ctx, metricName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Alarm), args.Error(1)
}

func (m *MockAlarmRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Alarm], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Alarm]), args.Error(1)
}

func (m *MockAlarmRepository) UpdateState(ctx context.Context, name string, state model.AlarmState) error {
	args := m.Called(ctx, name, state)
	return args.Error(0)
}

func (m *MockAlarmRepository) AppendDatapoint(ctx context.Context, alarmName string, value float64, observedAt time.Time) error {
	args := m.Called(ctx, alarmName, value, observedAt)
	return args.Error(0)
}

func (m *MockAlarmRepository) RecentDatapoints(ctx context.Context, alarmName string, n int) ([]float64, error) {
	args := m.Called(ctx, alarmName, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}
