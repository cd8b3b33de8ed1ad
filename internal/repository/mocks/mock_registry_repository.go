package mocks

import (
	"context"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) CreateGroup(ctx context.Context, g *model.ModelPackageGroup) (bool, error) {
	args := m.Called(ctx, g)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryRepository) FindGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackageGroup), args.Error(1)
}

func (m *MockRegistryRepository) ListGroups(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ModelPackageGroup], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ModelPackageGroup]), args.Error(1)
}

func (m *MockRegistryRepository) CreatePackage(ctx context.Context, p *model.ModelPackage) (*model.ModelPackage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryRepository) FindPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error) {
	args := m.Called(ctx, group, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryRepository) ListPackages(ctx context.Context, group string, pq repository.PageQuery) (*repository.PageResult[model.ModelPackage], error) {
	args := m.Called(ctx, group, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ModelPackage]), args.Error(1)
}

func (m *MockRegistryRepository) ListApproved(ctx context.Context, group string, limit int) ([]model.ModelPackage, error) {
	args := m.Called(ctx, group, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ModelPackage), args.Error(1)
}

func (m *MockRegistryRepository) UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error) {
	args := m.Called(ctx, group, version, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}
