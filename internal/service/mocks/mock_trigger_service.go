package mocks

import (
	"context"

	"driftwatch/internal/event"
	"driftwatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockTriggerService struct {
	mock.Mock
}

func (m *MockTriggerService) CreateRule(ctx context.Context, name, pipelineName string, kind model.TriggerKind, scheduleExpr string) (*model.TriggerRule, error) {
	args := m.Called(ctx, name, pipelineName, kind, scheduleExpr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TriggerRule), args.Error(1)
}

func (m *MockTriggerService) GetRule(ctx context.Context, name string) (*model.TriggerRule, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TriggerRule), args.Error(1)
}

func (m *MockTriggerService) ListRules(ctx context.Context, pipelineName string) ([]model.TriggerRule, error) {
	args := m.Called(ctx, pipelineName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TriggerRule), args.Error(1)
}

func (m *MockTriggerService) EnableRule(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockTriggerService) DisableRule(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockTriggerService) FireDrift(ctx context.Context, pipelineName, reason string) error {
	args := m.Called(ctx, pipelineName, reason)
	return args.Error(0)
}

func (m *MockTriggerService) HandlePipelineStateChange(ctx context.Context, evt event.PipelineExecutionStateChange) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockTriggerService) SyncSchedules(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
