package repository

import (
	"context"

	"driftwatch/internal/model"
)

// TriggerRepository defines data access for retraining trigger rules.
type TriggerRepository interface {
	// Create inserts a trigger rule.
	Create(ctx context.Context, r *model.TriggerRule) (*model.TriggerRule, error)

	// Find returns a rule by name.
	Find(ctx context.Context, name string) (*model.TriggerRule, error)

	// ListByPipeline returns all rules targeting a pipeline.
	ListByPipeline(ctx context.Context, pipeline string) ([]model.TriggerRule, error)

	// ListEnabledSchedules returns all enabled schedule-kind rules.
	ListEnabledSchedules(ctx context.Context) ([]model.TriggerRule, error)

	// SetEnabled toggles a rule. Returns sql.ErrNoRows if the rule does not exist.
	SetEnabled(ctx context.Context, name string, enabled bool) error
}
