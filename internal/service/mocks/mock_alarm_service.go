package mocks

import (
	"context"

	"driftwatch/internal/event"
	"driftwatch/internal/model"
	"driftwatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAlarmService struct {
	mock.Mock
}

func (m *MockAlarmService) CreateAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmService) UpsertAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmService) GetAlarm(ctx context.Context, name string) (*model.Alarm, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Alarm), args.Error(1)
}

func (m *MockAlarmService) ListAlarms(ctx context.Context, limit, offset int) (*service.AlarmListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AlarmListResult), args.Error(1)
}

func (m *MockAlarmService) Evaluate(ctx context.Context, metric model.DriftMetric) error {
	args := m.Called(ctx, metric)
	return args.Error(0)
}

func (m *MockAlarmService) HandleAlarmStateChange(ctx context.Context, evt event.AlarmStateChange) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}
