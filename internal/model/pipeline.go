package model

import "time"

// PipelineKind distinguishes the three pipeline flavors.
type PipelineKind string

const (
	PipelineBuild  PipelineKind = "build"
	PipelineDeploy PipelineKind = "deploy"
	PipelineBatch  PipelineKind = "batch"
)

// Valid reports whether k is a known pipeline kind.
func (k PipelineKind) Valid() bool {
	switch k {
	case PipelineBuild, PipelineDeploy, PipelineBatch:
		return true
	}
	return false
}

// ExecutionStatus is the lifecycle state of a pipeline execution.
type ExecutionStatus string

const (
	ExecutionExecuting ExecutionStatus = "Executing"
	ExecutionSucceeded ExecutionStatus = "Succeeded"
	ExecutionFailed    ExecutionStatus = "Failed"
	ExecutionStopped   ExecutionStatus = "Stopped"
)

// Terminal reports whether the execution has finished.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionSucceeded, ExecutionFailed, ExecutionStopped:
		return true
	}
	return false
}

// Pipeline is a registered pipeline. BuildTransitionEnabled gates whether new
// executions may start; the retraining coordinator toggles it while a run is
// in flight.
type Pipeline struct {
	Name                   string       `json:"name"`
	Kind                   PipelineKind `json:"kind"`
	DefinitionPath         string       `json:"definition_path,omitempty"`
	BuildTransitionEnabled bool         `json:"build_transition_enabled"`
	CreatedAt              time.Time    `json:"created_at"`
}

// PipelineExecution is a single run of a pipeline.
// ClientRequestToken makes StartExecution idempotent: re-posting the same
// token returns the existing execution.
type PipelineExecution struct {
	ID                 string            `json:"id"`
	PipelineName       string            `json:"pipeline_name"`
	DisplayName        string            `json:"display_name"`
	Status             ExecutionStatus   `json:"status"`
	ClientRequestToken string            `json:"client_request_token"`
	Parameters         map[string]string `json:"parameters,omitempty"`
	StartedAt          time.Time         `json:"started_at"`
	FinishedAt         *time.Time        `json:"finished_at,omitempty"`
}
