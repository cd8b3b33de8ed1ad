package mocks

import (
	"context"
	"time"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockPipelineRepository struct {
	mock.Mock
}

func (m *MockPipelineRepository) CreatePipeline(ctx context.Context, p *model.Pipeline) (*model.Pipeline, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) FindPipeline(ctx context.Context, name string) (*model.Pipeline, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) SetBuildTransition(ctx context.Context, name string, enabled bool) error {
	args := m.Called(ctx, name, enabled)
	return args.Error(0)
}

func (m *MockPipelineRepository) CreateExecution(ctx context.Context, e *model.PipelineExecution) (*model.PipelineExecution, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PipelineExecution), args.Error(1)
}

func (m *MockPipelineRepository) FindExecution(ctx context.Context, id string) (*model.PipelineExecution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PipelineExecution), args.Error(1)
}

func (m *MockPipelineRepository) FindExecutionByToken(ctx context.Context, token string) (*model.PipelineExecution, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PipelineExecution), args.Error(1)
}

func (m *MockPipelineRepository) ListExecutions(ctx context.Context, pipeline string, pq repository.PageQuery) (*repository.PageResult[model.PipelineExecution], error) {
	args := m.Called(ctx, pipeline, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.PipelineExecution]), args.Error(1)
}

func (m *MockPipelineRepository) UpdateExecutionStatus(ctx context.Context, id string, status model.ExecutionStatus, finishedAt *time.Time) error {
	args := m.Called(ctx, id, status, finishedAt)
	return args.Error(0)
}
