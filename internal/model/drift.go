package model

import "time"

// ConstraintViolation is one entry of a monitoring job's
// constraint_violations.json document.
type ConstraintViolation struct {
	FeatureName         string `json:"feature_name"`
	ConstraintCheckType string `json:"constraint_check_type"`
	Description         string `json:"description"`
}

// ConstraintViolations is the monitoring job result document.
type ConstraintViolations struct {
	Violations []ConstraintViolation `json:"violations"`
}

// DriftMetric is one baseline drift measurement extracted from a violation.
// MetricName keeps the wire format feature_baseline_drift_<feature>.
type DriftMetric struct {
	MetricName   string  `json:"metric_name"`
	FeatureName  string  `json:"feature_name"`
	PipelineName string  `json:"pipeline_name"`
	Value        float64 `json:"metric_value"`
	Threshold    float64 `json:"metric_threshold"`
}

// MonitoringStatus is the outcome of a monitoring run evaluation.
type MonitoringStatus string

const (
	MonitoringCompleted               MonitoringStatus = "Completed"
	MonitoringCompletedWithViolations MonitoringStatus = "CompletedWithViolations"
)

// MonitoringResult summarizes one evaluated monitoring run.
type MonitoringResult struct {
	JobName      string           `json:"job_name"`
	PipelineName string           `json:"pipeline_name"`
	Status       MonitoringStatus `json:"status"`
	Metrics      []DriftMetric    `json:"metrics,omitempty"`
	EvaluatedAt  time.Time        `json:"evaluated_at"`
}
