package mocks

import (
	"context"
	"io"

	"driftwatch/internal/model"
	"driftwatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRegistryService struct {
	mock.Mock
}

func (m *MockRegistryService) CreateGroup(ctx context.Context, name, description string) (*model.ModelPackageGroup, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackageGroup), args.Error(1)
}

func (m *MockRegistryService) GetGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackageGroup), args.Error(1)
}

func (m *MockRegistryService) ListGroups(ctx context.Context, limit, offset int) (*service.GroupListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GroupListResult), args.Error(1)
}

func (m *MockRegistryService) RegisterPackage(ctx context.Context, group string, r io.Reader, originalFilename, contentType string, size int64) (*model.ModelPackage, error) {
	args := m.Called(ctx, group, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryService) GetPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error) {
	args := m.Called(ctx, group, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryService) ListPackages(ctx context.Context, group string, limit, offset int) (*service.PackageListResult, error) {
	args := m.Called(ctx, group, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PackageListResult), args.Error(1)
}

func (m *MockRegistryService) UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error) {
	args := m.Called(ctx, group, version, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryService) LatestApproved(ctx context.Context, group string) (*model.ModelPackage, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ModelPackage), args.Error(1)
}

func (m *MockRegistryService) ArtifactURL(ctx context.Context, group string, version int) (string, error) {
	args := m.Called(ctx, group, version)
	return args.String(0), args.Error(1)
}

func (m *MockRegistryService) VersionedApproved(ctx context.Context, group string, versions []int) ([]model.ModelPackage, error) {
	args := m.Called(ctx, group, versions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ModelPackage), args.Error(1)
}
