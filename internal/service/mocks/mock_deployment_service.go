package mocks

import (
	"context"

	"driftwatch/internal/event"
	"driftwatch/internal/model"
	"driftwatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDeploymentService struct {
	mock.Mock
}

func (m *MockDeploymentService) Deploy(ctx context.Context, group, stage string) (*model.EndpointDeployment, error) {
	args := m.Called(ctx, group, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EndpointDeployment), args.Error(1)
}

func (m *MockDeploymentService) GetDeployment(ctx context.Context, endpointName string) (*model.EndpointDeployment, error) {
	args := m.Called(ctx, endpointName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EndpointDeployment), args.Error(1)
}

func (m *MockDeploymentService) ListDeployments(ctx context.Context, limit, offset int) (*service.DeploymentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeploymentListResult), args.Error(1)
}

func (m *MockDeploymentService) HandleModelPackageStateChange(ctx context.Context, evt event.ModelPackageStateChange) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}
