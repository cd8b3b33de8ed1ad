package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/model"
	"driftwatch/internal/pipeline"
	"driftwatch/internal/repository"
	"driftwatch/internal/storage"
)

var (
	ErrPipelineNameRequired = errors.New("pipeline name is required")
	ErrPipelineNotFound     = errors.New("pipeline not found")
	ErrExecutionNotFound    = errors.New("pipeline execution not found")
	ErrTokenRequired        = errors.New("client request token is required")
	ErrTransitionDisabled   = errors.New("build stage transition is disabled")
	ErrDefinitionNil        = errors.New("definition reader is nil")
)

// ExecutionListResult is the service-level DTO for paginated executions.
type ExecutionListResult struct {
	Items []model.PipelineExecution `json:"data"`
	Total int                       `json:"total"`
}

// PipelineService defines the use cases for pipelines and their executions.
type PipelineService interface {
	// CreatePipeline validates a YAML definition, stores it in the artifact
	// store, and registers the pipeline. The pipeline name and kind come from
	// the definition document. New pipelines start with the build stage
	// transition enabled.
	CreatePipeline(ctx context.Context, r io.Reader) (*model.Pipeline, error)

	// GetPipeline returns a pipeline by name.
	GetPipeline(ctx context.Context, name string) (*model.Pipeline, error)

	// ListPipelines returns all registered pipelines.
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)

	// StartExecution starts a pipeline run. The client request token makes it
	// idempotent: re-posting a token returns the execution it originally
	// created instead of starting a second run. Starting is refused while the
	// pipeline's build stage transition is disabled.
	StartExecution(ctx context.Context, pipelineName, token, displayName string, params map[string]string) (*model.PipelineExecution, error)

	// GetExecution returns an execution by ID.
	GetExecution(ctx context.Context, id string) (*model.PipelineExecution, error)

	// ListExecutions returns a pipeline's executions, newest first.
	ListExecutions(ctx context.Context, pipelineName string, limit, offset int) (*ExecutionListResult, error)
}

type pipelineService struct {
	store storage.Storage
	repo  repository.PipelineRepository
}

// NewPipelineService constructs a new PipelineService.
func NewPipelineService(store storage.Storage, repo repository.PipelineRepository) PipelineService {
	return &pipelineService{store: store, repo: repo}
}

func (s *pipelineService) CreatePipeline(ctx context.Context, r io.Reader) (*model.Pipeline, error) {
	if r == nil {
		return nil, ErrDefinitionNil
	}
	// Read once: the document is both validated and stored verbatim.
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pipeline definition: %w", err)
	}
	def, err := pipeline.LoadDefinition(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	key := filepath.ToSlash(filepath.Join("pipelines", def.Name+".yaml"))
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: "application/yaml",
	})
	if err != nil {
		return nil, fmt.Errorf("store pipeline definition: %w", err)
	}

	p := &model.Pipeline{
		Name:                   def.Name,
		Kind:                   model.PipelineKind(def.Kind),
		DefinitionPath:         objInfo.Key,
		BuildTransitionEnabled: true,
		CreatedAt:              time.Now().UTC(),
	}
	stored, err := s.repo.CreatePipeline(ctx, p)
	if err != nil {
		// Rollback: delete the stored definition
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *pipelineService) GetPipeline(ctx context.Context, name string) (*model.Pipeline, error) {
	if name == "" {
		return nil, ErrPipelineNameRequired
	}
	p, err := s.repo.FindPipeline(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPipelineNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *pipelineService) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	return s.repo.ListPipelines(ctx)
}

func (s *pipelineService) StartExecution(ctx context.Context, pipelineName, token, displayName string, params map[string]string) (*model.PipelineExecution, error) {
	if pipelineName == "" {
		return nil, ErrPipelineNameRequired
	}
	if token == "" {
		return nil, ErrTokenRequired
	}

	// Idempotency: a replayed token returns the original execution.
	if existing, err := s.repo.FindExecutionByToken(ctx, token); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	p, err := s.GetPipeline(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	if !p.BuildTransitionEnabled {
		return nil, ErrTransitionDisabled
	}

	if displayName == "" {
		displayName = pipelineName + "-" + time.Now().UTC().Format("20060102-150405")
	}
	e := &model.PipelineExecution{
		ID:                 uuid.New().String(),
		PipelineName:       pipelineName,
		DisplayName:        displayName,
		Status:             model.ExecutionExecuting,
		ClientRequestToken: token,
		Parameters:         params,
		StartedAt:          time.Now().UTC(),
	}
	return s.repo.CreateExecution(ctx, e)
}

func (s *pipelineService) GetExecution(ctx context.Context, id string) (*model.PipelineExecution, error) {
	if id == "" {
		return nil, ErrExecutionNotFound
	}
	e, err := s.repo.FindExecution(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExecutionNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *pipelineService) ListExecutions(ctx context.Context, pipelineName string, limit, offset int) (*ExecutionListResult, error) {
	if pipelineName == "" {
		return nil, ErrPipelineNameRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListExecutions(ctx, pipelineName, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ExecutionListResult{Items: res.Items, Total: res.Total}, nil
}
