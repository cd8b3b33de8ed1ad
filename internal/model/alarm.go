package model

import "time"

// AlarmState is the evaluated state of a metric alarm.
type AlarmState string

const (
	AlarmStateOK               AlarmState = "OK"
	AlarmStateAlarm            AlarmState = "ALARM"
	AlarmStateInsufficientData AlarmState = "INSUFFICIENT_DATA"
)

// ComparisonOperator compares a datapoint against an alarm threshold.
type ComparisonOperator string

const (
	GreaterThanThreshold          ComparisonOperator = "GreaterThanThreshold"
	GreaterThanOrEqualToThreshold ComparisonOperator = "GreaterThanOrEqualToThreshold"
	LessThanThreshold             ComparisonOperator = "LessThanThreshold"
	LessThanOrEqualToThreshold    ComparisonOperator = "LessThanOrEqualToThreshold"
)

// Valid reports whether op is a known comparison operator.
func (op ComparisonOperator) Valid() bool {
	switch op {
	case GreaterThanThreshold, GreaterThanOrEqualToThreshold,
		LessThanThreshold, LessThanOrEqualToThreshold:
		return true
	}
	return false
}

// Breaches reports whether value breaches threshold under op.
// Unknown operators never breach.
func (op ComparisonOperator) Breaches(value, threshold float64) bool {
	switch op {
	case GreaterThanThreshold:
		return value > threshold
	case GreaterThanOrEqualToThreshold:
		return value >= threshold
	case LessThanThreshold:
		return value < threshold
	case LessThanOrEqualToThreshold:
		return value <= threshold
	}
	return false
}

// Alarm watches a single drift metric. The alarm goes to ALARM when at least
// DatapointsToAlarm of the last EvaluationPeriods datapoints breach the
// threshold, and back to OK otherwise.
type Alarm struct {
	Name               string             `json:"name"`
	PipelineName       string             `json:"pipeline_name"`
	MetricName         string             `json:"metric_name"`
	Threshold          float64            `json:"threshold"`
	ComparisonOperator ComparisonOperator `json:"comparison_operator"`
	EvaluationPeriods  int                `json:"evaluation_periods"`
	DatapointsToAlarm  int                `json:"datapoints_to_alarm"`
	PeriodSeconds      int                `json:"period_seconds"`
	Statistic          string             `json:"statistic"`
	State              AlarmState         `json:"state"`
	StateUpdatedAt     time.Time          `json:"state_updated_at"`
	CreatedAt          time.Time          `json:"created_at"`
}
