// Package event defines the webhook payload shapes delivered by the managed
// platform. Field names and casing are part of the wire contract and must not
// change.
package event

import (
	"errors"
	"fmt"

	"driftwatch/internal/model"
)

// DriftMetricNamespace identifies drift metrics emitted by monitoring runs.
const DriftMetricNamespace = "model-monitor/data-metrics"

var (
	ErrGroupNameRequired    = errors.New("ModelPackageGroupName is required")
	ErrVersionRequired      = errors.New("ModelPackageVersion must be positive")
	ErrPipelineNameRequired = errors.New("pipeline is required")
	ErrExecutionIDRequired  = errors.New("execution-id is required")
	ErrAlarmNameRequired    = errors.New("alarmName is required")
)

// ModelPackageStateChange announces an approval transition of a model package.
type ModelPackageStateChange struct {
	ModelPackageGroupName string `json:"ModelPackageGroupName"`
	ModelPackageVersion   int    `json:"ModelPackageVersion"`
	ModelApprovalStatus   string `json:"ModelApprovalStatus"`
}

func (e ModelPackageStateChange) Validate() error {
	if e.ModelPackageGroupName == "" {
		return ErrGroupNameRequired
	}
	if e.ModelPackageVersion <= 0 {
		return ErrVersionRequired
	}
	if !model.ApprovalStatus(e.ModelApprovalStatus).Valid() {
		return fmt.Errorf("unknown ModelApprovalStatus %q", e.ModelApprovalStatus)
	}
	return nil
}

// Pipeline execution states carried by PipelineExecutionStateChange events.
const (
	StateStarted   = "STARTED"
	StateSucceeded = "SUCCEEDED"
	StateFailed    = "FAILED"
	StateStopped   = "STOPPED"
)

// PipelineExecutionStateChange announces a pipeline execution state
// transition. The execution-id field name is hyphenated on the wire.
type PipelineExecutionStateChange struct {
	Pipeline    string `json:"pipeline"`
	ExecutionID string `json:"execution-id"`
	State       string `json:"state"`
}

func (e PipelineExecutionStateChange) Validate() error {
	if e.Pipeline == "" {
		return ErrPipelineNameRequired
	}
	if e.ExecutionID == "" {
		return ErrExecutionIDRequired
	}
	switch e.State {
	case StateStarted, StateSucceeded, StateFailed, StateStopped:
		return nil
	}
	return fmt.Errorf("unknown state %q", e.State)
}

// ExecutionStatus maps the wire state to the internal execution status.
func (e PipelineExecutionStateChange) ExecutionStatus() model.ExecutionStatus {
	switch e.State {
	case StateStarted:
		return model.ExecutionExecuting
	case StateSucceeded:
		return model.ExecutionSucceeded
	case StateFailed:
		return model.ExecutionFailed
	case StateStopped:
		return model.ExecutionStopped
	}
	return ""
}

// AlarmStateValue is the nested state object of an alarm event.
type AlarmStateValue struct {
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// MetricIdentifier names the metric behind an alarm, identifying which
// monitored feature drifted.
type MetricIdentifier struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// AlarmStateChange announces an alarm state transition.
type AlarmStateChange struct {
	AlarmName string           `json:"alarmName"`
	State     AlarmStateValue  `json:"state"`
	Metric    MetricIdentifier `json:"metric"`
}

func (e AlarmStateChange) Validate() error {
	if e.AlarmName == "" {
		return ErrAlarmNameRequired
	}
	switch model.AlarmState(e.State.Value) {
	case model.AlarmStateOK, model.AlarmStateAlarm, model.AlarmStateInsufficientData:
		return nil
	}
	return fmt.Errorf("unknown alarm state %q", e.State.Value)
}
