package postgres

import (
	"context"
	"database/sql"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

// RegistryPostgres is a PostgreSQL implementation of repository.RegistryRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RegistryPostgres struct {
	db *sql.DB
}

// NewRegistryPostgres creates a new RegistryPostgres repository.
func NewRegistryPostgres(db *sql.DB) *RegistryPostgres {
	return &RegistryPostgres{db: db}
}

var _ repository.RegistryRepository = (*RegistryPostgres)(nil)

// CreateGroup inserts a group row; an existing group is left untouched.
func (r *RegistryPostgres) CreateGroup(ctx context.Context, g *model.ModelPackageGroup) (bool, error) {
	const q = `
		INSERT INTO model_package_groups (name, description, project_name, project_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q,
		g.Name,
		g.Description,
		g.ProjectName,
		g.ProjectID,
		g.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FindGroup fetches a single group by name.
func (r *RegistryPostgres) FindGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error) {
	const q = `
		SELECT name, description, project_name, project_id, created_at
		FROM model_package_groups
		WHERE name = $1
	`
	row := r.db.QueryRowContext(ctx, q, name)
	var g model.ModelPackageGroup
	if err := row.Scan(
		&g.Name,
		&g.Description,
		&g.ProjectName,
		&g.ProjectID,
		&g.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns groups using LIMIT/OFFSET pagination and a total count.
func (r *RegistryPostgres) ListGroups(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ModelPackageGroup], error) {
	const qCount = `SELECT COUNT(*) FROM model_package_groups`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT name, description, project_name, project_id, created_at
		FROM model_package_groups
		ORDER BY created_at DESC, name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ModelPackageGroup, 0)
	for rows.Next() {
		var g model.ModelPackageGroup
		if err := rows.Scan(
			&g.Name,
			&g.Description,
			&g.ProjectName,
			&g.ProjectID,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ModelPackageGroup]{
		Items: items,
		Total: total,
	}, nil
}

// CreatePackage inserts a package row, assigning the next version for the group.
func (r *RegistryPostgres) CreatePackage(ctx context.Context, p *model.ModelPackage) (*model.ModelPackage, error) {
	const q = `
		INSERT INTO model_packages (id, group_name, version, artifact_path, approval_status, created_at, updated_at)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM model_packages WHERE group_name = $2),
			$3, $4, $5, $5)
		RETURNING id, group_name, version, artifact_path, approval_status, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.GroupName,
		p.ArtifactPath,
		p.ApprovalStatus,
		p.CreatedAt,
	)
	var out model.ModelPackage
	if err := row.Scan(
		&out.ID,
		&out.GroupName,
		&out.Version,
		&out.ArtifactPath,
		&out.ApprovalStatus,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindPackage fetches a single package version of a group.
func (r *RegistryPostgres) FindPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error) {
	const q = `
		SELECT id, group_name, version, artifact_path, approval_status, created_at, updated_at
		FROM model_packages
		WHERE group_name = $1 AND version = $2
	`
	row := r.db.QueryRowContext(ctx, q, group, version)
	var p model.ModelPackage
	if err := row.Scan(
		&p.ID,
		&p.GroupName,
		&p.Version,
		&p.ArtifactPath,
		&p.ApprovalStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPackages returns a group's packages, newest first, with a total count.
func (r *RegistryPostgres) ListPackages(ctx context.Context, group string, pq repository.PageQuery) (*repository.PageResult[model.ModelPackage], error) {
	const qCount = `SELECT COUNT(*) FROM model_packages WHERE group_name = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, group).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, group_name, version, artifact_path, approval_status, created_at, updated_at
		FROM model_packages
		WHERE group_name = $1
		ORDER BY version DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, group, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ModelPackage, 0)
	for rows.Next() {
		var p model.ModelPackage
		if err := rows.Scan(
			&p.ID,
			&p.GroupName,
			&p.Version,
			&p.ArtifactPath,
			&p.ApprovalStatus,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ModelPackage]{
		Items: items,
		Total: total,
	}, nil
}

// ListApproved returns up to limit approved packages of a group, newest first.
func (r *RegistryPostgres) ListApproved(ctx context.Context, group string, limit int) ([]model.ModelPackage, error) {
	const q = `
		SELECT id, group_name, version, artifact_path, approval_status, created_at, updated_at
		FROM model_packages
		WHERE group_name = $1 AND approval_status = 'Approved'
		ORDER BY created_at DESC, version DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, group, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ModelPackage, 0)
	for rows.Next() {
		var p model.ModelPackage
		if err := rows.Scan(
			&p.ID,
			&p.GroupName,
			&p.Version,
			&p.ArtifactPath,
			&p.ApprovalStatus,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateApproval sets the approval status of a package version.
func (r *RegistryPostgres) UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error) {
	const q = `
		UPDATE model_packages
		SET approval_status = $3, updated_at = now()
		WHERE group_name = $1 AND version = $2
		RETURNING id, group_name, version, artifact_path, approval_status, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, group, version, status)
	var p model.ModelPackage
	if err := row.Scan(
		&p.ID,
		&p.GroupName,
		&p.Version,
		&p.ArtifactPath,
		&p.ApprovalStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
