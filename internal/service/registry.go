package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/config"
	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"driftwatch/internal/storage"
)

var (
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrGroupNotFound      = errors.New("model package group not found")
	ErrPackageNotFound    = errors.New("model package not found")
	ErrNoApprovedPackages = errors.New("no approved model packages in group")
	ErrArtifactNil        = errors.New("artifact reader is nil")
	ErrInvalidApproval    = errors.New("invalid approval status")
	ErrVersionsRequired   = errors.New("at least one version is required")
)

// GroupListResult is the service-level DTO for paginated package groups.
type GroupListResult struct {
	Items []model.ModelPackageGroup `json:"data"`
	Total int                       `json:"total"`
}

// PackageListResult is the service-level DTO for paginated model packages.
type PackageListResult struct {
	Items []model.ModelPackage `json:"data"`
	Total int                  `json:"total"`
}

// RegistryService defines the use cases of the model package registry.
type RegistryService interface {
	// CreateGroup ensures a package group exists. Creating a group that
	// already exists returns the existing group; it is not an error.
	CreateGroup(ctx context.Context, name, description string) (*model.ModelPackageGroup, error)

	// GetGroup returns a group by name.
	GetGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error)

	// ListGroups returns groups using limit/offset and a total count.
	ListGroups(ctx context.Context, limit, offset int) (*GroupListResult, error)

	// RegisterPackage uploads a model artifact to the artifact store, records
	// the package with the next version for its group, and rolls back the
	// upload if the record cannot be saved. New packages start Pending.
	RegisterPackage(ctx context.Context, group string, r io.Reader, originalFilename, contentType string, size int64) (*model.ModelPackage, error)

	// GetPackage returns one package version of a group.
	GetPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error)

	// ListPackages returns a group's packages, newest first.
	ListPackages(ctx context.Context, group string, limit, offset int) (*PackageListResult, error)

	// UpdateApproval transitions a package's approval status.
	UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error)

	// LatestApproved returns the most recently created approved package of a
	// group. A group with zero approved packages is an error: nothing is
	// deployable yet.
	LatestApproved(ctx context.Context, group string) (*model.ModelPackage, error)

	// VersionedApproved returns the requested package versions of a group,
	// newest first. A version that is missing or not approved is an error: a
	// pinned rollout must never fall through to a different package.
	VersionedApproved(ctx context.Context, group string, versions []int) ([]model.ModelPackage, error)

	// ArtifactURL returns a time-limited download URL for a package's stored
	// artifact.
	ArtifactURL(ctx context.Context, group string, version int) (string, error)
}

// artifactURLExpiry bounds how long a presigned artifact link stays valid.
const artifactURLExpiry = 15 * time.Minute

type registryService struct {
	store   storage.Storage
	repo    repository.RegistryRepository
	project config.ProjectConfig
}

// NewRegistryService constructs a new RegistryService.
func NewRegistryService(store storage.Storage, repo repository.RegistryRepository, project config.ProjectConfig) RegistryService {
	return &registryService{store: store, repo: repo, project: project}
}

func (s *registryService) CreateGroup(ctx context.Context, name, description string) (*model.ModelPackageGroup, error) {
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	g := &model.ModelPackageGroup{
		Name:        name,
		Description: description,
		ProjectName: s.project.Name,
		ProjectID:   s.project.ID,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.repo.CreateGroup(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if !created {
		// Already existed; return the stored record.
		return s.repo.FindGroup(ctx, name)
	}
	return g, nil
}

func (s *registryService) GetGroup(ctx context.Context, name string) (*model.ModelPackageGroup, error) {
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	g, err := s.repo.FindGroup(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *registryService) ListGroups(ctx context.Context, limit, offset int) (*GroupListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListGroups(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &GroupListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *registryService) RegisterPackage(ctx context.Context, group string, r io.Reader, originalFilename, contentType string, size int64) (*model.ModelPackage, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	if r == nil {
		return nil, ErrArtifactNil
	}
	if _, err := s.GetGroup(ctx, group); err != nil {
		return nil, err
	}

	// Store the artifact under a UUID key; the original name is metadata only.
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("models", group, uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"group-name":        group,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload artifact: %w", err)
	}

	pkg := &model.ModelPackage{
		ID:             uuid.New().String(),
		GroupName:      group,
		ArtifactPath:   objInfo.Key,
		ApprovalStatus: model.ApprovalPending,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	stored, err := s.repo.CreatePackage(ctx, pkg)
	if err != nil {
		// Rollback: delete the artifact from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *registryService) GetPackage(ctx context.Context, group string, version int) (*model.ModelPackage, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	pkg, err := s.repo.FindPackage(ctx, group, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *registryService) ListPackages(ctx context.Context, group string, limit, offset int) (*PackageListResult, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListPackages(ctx, group, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PackageListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *registryService) UpdateApproval(ctx context.Context, group string, version int, status model.ApprovalStatus) (*model.ModelPackage, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	if !status.Valid() {
		return nil, ErrInvalidApproval
	}
	pkg, err := s.repo.UpdateApproval(ctx, group, version, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *registryService) LatestApproved(ctx context.Context, group string) (*model.ModelPackage, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	pkgs, err := s.repo.ListApproved(ctx, group, 1)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, ErrNoApprovedPackages
	}
	return &pkgs[0], nil
}

func (s *registryService) VersionedApproved(ctx context.Context, group string, versions []int) ([]model.ModelPackage, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	if len(versions) == 0 {
		return nil, ErrVersionsRequired
	}
	pkgs := make([]model.ModelPackage, 0, len(versions))
	for _, v := range versions {
		p, err := s.repo.FindPackage(ctx, group, v)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("version %d: %w", v, ErrPackageNotFound)
			}
			return nil, err
		}
		if p.ApprovalStatus != model.ApprovalApproved {
			return nil, fmt.Errorf("version %d: %w", v, ErrPackageNotApproved)
		}
		pkgs = append(pkgs, *p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Version > pkgs[j].Version })
	return pkgs, nil
}

func (s *registryService) ArtifactURL(ctx context.Context, group string, version int) (string, error) {
	p, err := s.GetPackage(ctx, group, version)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, p.ArtifactPath, artifactURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign artifact: %w", err)
	}
	return u, nil
}
