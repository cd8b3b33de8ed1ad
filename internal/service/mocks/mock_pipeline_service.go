package mocks

import (
	"context"
	"io"

	"driftwatch/internal/model"
	"driftwatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockPipelineService struct {
	mock.Mock
}

func (m *MockPipelineService) CreatePipeline(ctx context.Context, r io.Reader) (*model.Pipeline, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pipeline), args.Error(1)
}

func (m *MockPipelineService) GetPipeline(ctx context.Context, name string) (*model.Pipeline, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pipeline), args.Error(1)
}

func (m *MockPipelineService) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pipeline), args.Error(1)
}

func (m *MockPipelineService) StartExecution(ctx context.Context, pipelineName, token, displayName string, params map[string]string) (*model.PipelineExecution, error) {
	args := m.Called(ctx, pipelineName, token, displayName, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PipelineExecution), args.Error(1)
}

func (m *MockPipelineService) GetExecution(ctx context.Context, id string) (*model.PipelineExecution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PipelineExecution), args.Error(1)
}

func (m *MockPipelineService) ListExecutions(ctx context.Context, pipelineName string, limit, offset int) (*service.ExecutionListResult, error) {
	args := m.Called(ctx, pipelineName, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExecutionListResult), args.Error(1)
}
