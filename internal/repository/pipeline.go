package repository

import (
	"context"
	"time"

	"driftwatch/internal/model"
)

// PipelineRepository defines data access for pipelines and their executions.
type PipelineRepository interface {
	// CreatePipeline inserts a pipeline record.
	CreatePipeline(ctx context.Context, p *model.Pipeline) (*model.Pipeline, error)

	// FindPipeline returns a pipeline by name.
	FindPipeline(ctx context.Context, name string) (*model.Pipeline, error)

	// ListPipelines returns all pipelines.
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)

	// SetBuildTransition toggles whether new executions may start.
	// Returns sql.ErrNoRows if the pipeline does not exist.
	SetBuildTransition(ctx context.Context, name string, enabled bool) error

	// CreateExecution inserts an execution record.
	CreateExecution(ctx context.Context, e *model.PipelineExecution) (*model.PipelineExecution, error)

	// FindExecution returns an execution by ID.
	FindExecution(ctx context.Context, id string) (*model.PipelineExecution, error)

	// FindExecutionByToken returns the execution created with the given
	// client request token, for idempotent starts.
	FindExecutionByToken(ctx context.Context, token string) (*model.PipelineExecution, error)

	// ListExecutions returns a paginated list of a pipeline's executions, newest first.
	ListExecutions(ctx context.Context, pipeline string, pq PageQuery) (*PageResult[model.PipelineExecution], error)

	// UpdateExecutionStatus sets the status (and finish time, when terminal)
	// of an execution.
	UpdateExecutionStatus(ctx context.Context, id string, status model.ExecutionStatus, finishedAt *time.Time) error
}
