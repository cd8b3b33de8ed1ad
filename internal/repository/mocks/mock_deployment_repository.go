package mocks

import (
	"context"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDeploymentRepository struct {
	mock.Mock
}

func (m *MockDeploymentRepository) Upsert(ctx context.Context, d *model.EndpointDeployment) (*model.EndpointDeployment, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EndpointDeployment), args.Error(1)
}

func (m *MockDeploymentRepository) FindByEndpoint(ctx context.Context, endpointName string) (*model.EndpointDeployment, error) {
	args := m.Called(ctx, endpointName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EndpointDeployment), args.Error(1)
}

func (m *MockDeploymentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.EndpointDeployment], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.EndpointDeployment]), args.Error(1)
}

func (m *MockDeploymentRepository) UpdateStatus(ctx context.Context, endpointName string, status model.DeploymentStatus) error {
	args := m.Called(ctx, endpointName, status)
	return args.Error(0)
}
