package mocks

import (
	"context"

	"driftwatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTriggerRepository struct {
	mock.Mock
}

func (m *MockTriggerRepository) Create(ctx context.Context, r *model.TriggerRule) (*model.TriggerRule, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TriggerRule), args.Error(1)
}

func (m *MockTriggerRepository) Find(ctx context.Context, name string) (*model.TriggerRule, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TriggerRule), args.Error(1)
}

func (m *MockTriggerRepository) ListByPipeline(ctx context.Context, pipeline string) ([]model.TriggerRule, error) {
	args := m.Called(ctx, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TriggerRule), args.Error(1)
}

func (m *MockTriggerRepository) ListEnabledSchedules(ctx context.Context) ([]model.TriggerRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TriggerRule), args.Error(1)
}

func (m *MockTriggerRepository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	args := m.Called(ctx, name, enabled)
	return args.Error(0)
}
