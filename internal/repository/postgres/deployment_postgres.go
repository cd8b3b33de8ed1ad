package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

// DeploymentPostgres is a PostgreSQL implementation of repository.DeploymentRepository.
type DeploymentPostgres struct {
	db *sql.DB
}

// NewDeploymentPostgres creates a new DeploymentPostgres repository.
func NewDeploymentPostgres(db *sql.DB) *DeploymentPostgres {
	return &DeploymentPostgres{db: db}
}

var _ repository.DeploymentRepository = (*DeploymentPostgres)(nil)

const deploymentColumns = `id, endpoint_name, stage_name, group_name, package_version, variant_name,
		instance_count, instance_type, initial_variant_weight, auto_scaling, data_capture,
		monitoring_schedule_name, status, created_at, updated_at`

// Upsert inserts a deployment or updates the existing row for the endpoint.
func (r *DeploymentPostgres) Upsert(ctx context.Context, d *model.EndpointDeployment) (*model.EndpointDeployment, error) {
	autoScaling, err := marshalNullable(d.AutoScaling)
	if err != nil {
		return nil, err
	}
	dataCapture, err := marshalNullable(d.DataCapture)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO endpoint_deployments (id, endpoint_name, stage_name, group_name, package_version,
			variant_name, instance_count, instance_type, initial_variant_weight, auto_scaling,
			data_capture, monitoring_schedule_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (endpoint_name) DO UPDATE SET
			stage_name = EXCLUDED.stage_name,
			group_name = EXCLUDED.group_name,
			package_version = EXCLUDED.package_version,
			variant_name = EXCLUDED.variant_name,
			instance_count = EXCLUDED.instance_count,
			instance_type = EXCLUDED.instance_type,
			initial_variant_weight = EXCLUDED.initial_variant_weight,
			auto_scaling = EXCLUDED.auto_scaling,
			data_capture = EXCLUDED.data_capture,
			monitoring_schedule_name = EXCLUDED.monitoring_schedule_name,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + deploymentColumns
	row := r.db.QueryRowContext(ctx, q,
		d.ID,
		d.EndpointName,
		d.StageName,
		d.GroupName,
		d.PackageVersion,
		d.VariantName,
		d.InstanceCount,
		d.InstanceType,
		d.InitialVariantWeight,
		autoScaling,
		dataCapture,
		d.MonitoringScheduleName,
		d.Status,
		d.CreatedAt,
	)
	return scanDeployment(row)
}

// FindByEndpoint fetches the deployment for an endpoint name.
func (r *DeploymentPostgres) FindByEndpoint(ctx context.Context, endpointName string) (*model.EndpointDeployment, error) {
	const q = `SELECT ` + deploymentColumns + ` FROM endpoint_deployments WHERE endpoint_name = $1`
	return scanDeployment(r.db.QueryRowContext(ctx, q, endpointName))
}

// List returns deployments using LIMIT/OFFSET pagination and a total count.
func (r *DeploymentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.EndpointDeployment], error) {
	const qCount = `SELECT COUNT(*) FROM endpoint_deployments`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + deploymentColumns + `
		FROM endpoint_deployments
		ORDER BY updated_at DESC, endpoint_name
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.EndpointDeployment, 0)
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.EndpointDeployment]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus sets the deployment status for an endpoint.
func (r *DeploymentPostgres) UpdateStatus(ctx context.Context, endpointName string, status model.DeploymentStatus) error {
	const q = `UPDATE endpoint_deployments SET status = $2, updated_at = now() WHERE endpoint_name = $1`
	res, err := r.db.ExecContext(ctx, q, endpointName, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func scanDeployment(row rowScanner) (*model.EndpointDeployment, error) {
	var (
		d           model.EndpointDeployment
		autoScaling []byte
		dataCapture []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.EndpointName,
		&d.StageName,
		&d.GroupName,
		&d.PackageVersion,
		&d.VariantName,
		&d.InstanceCount,
		&d.InstanceType,
		&d.InitialVariantWeight,
		&autoScaling,
		&dataCapture,
		&d.MonitoringScheduleName,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(autoScaling) > 0 {
		if err := json.Unmarshal(autoScaling, &d.AutoScaling); err != nil {
			return nil, err
		}
	}
	if len(dataCapture) > 0 {
		if err := json.Unmarshal(dataCapture, &d.DataCapture); err != nil {
			return nil, err
		}
	}
	return &d, nil
}
