package repository

import (
	"context"

	"driftwatch/internal/model"
)

// DeploymentRepository defines data access for endpoint deployments.
type DeploymentRepository interface {
	// Upsert inserts a deployment or updates the existing row for the same
	// endpoint name. Returns the stored record.
	Upsert(ctx context.Context, d *model.EndpointDeployment) (*model.EndpointDeployment, error)

	// FindByEndpoint returns the deployment for an endpoint name.
	FindByEndpoint(ctx context.Context, endpointName string) (*model.EndpointDeployment, error)

	// List returns a paginated list of deployments, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.EndpointDeployment], error)

	// UpdateStatus sets the deployment status for an endpoint.
	UpdateStatus(ctx context.Context, endpointName string, status model.DeploymentStatus) error
}
