package repository

import (
	"context"

	"driftwatch/internal/model"
)

// RegistryRepository defines data access for model package groups and
// packages using SQL queries only. No business logic here.
type RegistryRepository interface {
	// CreateGroup inserts a group if it does not exist. It returns false when
	// the group already existed (not an error).
	CreateGroup(ctx context.Context, g *model.ModelPackageGroup) (bool, error)

	// FindGroup returns a group by name.
	FindGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error)

	// ListGroups returns a paginated list of groups and the total count.
	ListGroups(ctx context.Context, pq PageQuery) (*PageResult[model.ModelPackageGroup], error)

	// CreatePackage inserts a package, assigning the next version for its
	// group. Returns the stored package including the assigned version.
	CreatePackage(ctx context.Context, p *model.ModelPackage) (*model.ModelPackage, error)

	// FindPackage returns a specific package version of a group.
	FindPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error)

	// ListPackages returns a paginated list of a group's packages, newest first.
	ListPackages(ctx context.Context, group string, pq PageQuery) (*PageResult[model.ModelPackage], error)

	// ListApproved returns up to limit approved packages of a group, newest first.
	ListApproved(ctx context.Context, group string, limit int) ([]model.ModelPackage, error)

	// UpdateApproval sets the approval status of a package version and
	// returns the updated record.
	UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error)
}
