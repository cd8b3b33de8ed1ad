package model

import "time"

// TriggerKind is the class of a retraining trigger rule.
type TriggerKind string

const (
	// TriggerDrift rules start retraining when a drift alarm fires.
	TriggerDrift TriggerKind = "drift"
	// TriggerSchedule rules start retraining on a cron schedule.
	TriggerSchedule TriggerKind = "schedule"
)

// Valid reports whether k is a known trigger kind.
func (k TriggerKind) Valid() bool {
	return k == TriggerDrift || k == TriggerSchedule
}

// TriggerRule routes drift alarms or cron fires to a pipeline. Rules are
// disabled while their pipeline is executing and re-enabled afterwards.
type TriggerRule struct {
	Name               string      `json:"name"`
	PipelineName       string      `json:"pipeline_name"`
	Kind               TriggerKind `json:"kind"`
	ScheduleExpression string      `json:"schedule_expression,omitempty"`
	Enabled            bool        `json:"enabled"`
	CreatedAt          time.Time   `json:"created_at"`
}
