package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/event"
	"driftwatch/internal/model"
	"driftwatch/internal/repository"
	"driftwatch/internal/schedule"
)

var (
	ErrRuleNameRequired = errors.New("rule name is required")
	ErrRuleNotFound     = errors.New("trigger rule not found")
	ErrInvalidRuleKind  = errors.New("invalid trigger rule kind")
	ErrScheduleRequired = errors.New("schedule rules require a schedule expression")
)

// ScheduleRegistrar registers named cron jobs. Implemented by
// schedule.Scheduler; an interface so tests can observe registrations.
type ScheduleRegistrar interface {
	Register(name, spec string, job schedule.Job) error
	Remove(name string)
}

// TriggerService coordinates retraining. It owns the trigger rules that route
// drift alarms and cron fires into pipeline executions, and it reacts to
// pipeline state changes: while a pipeline is executing, its build stage
// transition and its trigger rules are disabled so runs never overlap, and
// both are restored when the run reaches a terminal state.
type TriggerService interface {
	// CreateRule registers a trigger rule for an existing pipeline. Schedule
	// rules are validated against standard cron syntax and begin firing
	// immediately.
	CreateRule(ctx context.Context, name, pipelineName string, kind model.TriggerKind, scheduleExpr string) (*model.TriggerRule, error)

	// GetRule returns a rule by name.
	GetRule(ctx context.Context, name string) (*model.TriggerRule, error)

	// ListRules returns all rules targeting a pipeline.
	ListRules(ctx context.Context, pipelineName string) ([]model.TriggerRule, error)

	// EnableRule re-enables a rule, resuming its schedule when it has one.
	EnableRule(ctx context.Context, name string) error

	// DisableRule disables a rule and unregisters its schedule.
	DisableRule(ctx context.Context, name string) error

	// FireDrift starts retraining for a pipeline because a drift alarm went
	// to ALARM. A missing or disabled drift rule is tolerated: the fire is
	// logged and dropped.
	FireDrift(ctx context.Context, pipelineName, reason string) error

	// HandlePipelineStateChange applies a pipeline execution state transition.
	HandlePipelineStateChange(ctx context.Context, evt event.PipelineExecutionStateChange) error

	// SyncSchedules registers cron jobs for every enabled schedule rule.
	// Called once at startup to restore schedules from the database.
	SyncSchedules(ctx context.Context) error
}

type triggerService struct {
	rules     repository.TriggerRepository
	pipelines repository.PipelineRepository
	starter   PipelineService
	scheduler ScheduleRegistrar
}

// NewTriggerService constructs a new TriggerService.
func NewTriggerService(rules repository.TriggerRepository, pipelines repository.PipelineRepository, starter PipelineService, scheduler ScheduleRegistrar) TriggerService {
	return &triggerService{rules: rules, pipelines: pipelines, starter: starter, scheduler: scheduler}
}

func (s *triggerService) CreateRule(ctx context.Context, name, pipelineName string, kind model.TriggerKind, scheduleExpr string) (*model.TriggerRule, error) {
	if name == "" {
		return nil, ErrRuleNameRequired
	}
	if pipelineName == "" {
		return nil, ErrPipelineNameRequired
	}
	if !kind.Valid() {
		return nil, ErrInvalidRuleKind
	}
	if kind == model.TriggerSchedule {
		if scheduleExpr == "" {
			return nil, ErrScheduleRequired
		}
		if err := schedule.Validate(scheduleExpr); err != nil {
			return nil, fmt.Errorf("invalid schedule expression: %w", err)
		}
	}
	if _, err := s.pipelines.FindPipeline(ctx, pipelineName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPipelineNotFound
		}
		return nil, err
	}

	r := &model.TriggerRule{
		Name:               name,
		PipelineName:       pipelineName,
		Kind:               kind,
		ScheduleExpression: scheduleExpr,
		Enabled:            true,
		CreatedAt:          time.Now().UTC(),
	}
	stored, err := s.rules.Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("create trigger rule: %w", err)
	}
	if stored.Kind == model.TriggerSchedule {
		if err := s.registerSchedule(stored); err != nil {
			return nil, err
		}
	}
	return stored, nil
}

func (s *triggerService) GetRule(ctx context.Context, name string) (*model.TriggerRule, error) {
	if name == "" {
		return nil, ErrRuleNameRequired
	}
	r, err := s.rules.Find(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *triggerService) ListRules(ctx context.Context, pipelineName string) ([]model.TriggerRule, error) {
	if pipelineName == "" {
		return nil, ErrPipelineNameRequired
	}
	return s.rules.ListByPipeline(ctx, pipelineName)
}

func (s *triggerService) EnableRule(ctx context.Context, name string) error {
	r, err := s.GetRule(ctx, name)
	if err != nil {
		return err
	}
	if err := s.rules.SetEnabled(ctx, name, true); err != nil {
		return err
	}
	if r.Kind == model.TriggerSchedule {
		return s.registerSchedule(r)
	}
	return nil
}

func (s *triggerService) DisableRule(ctx context.Context, name string) error {
	r, err := s.GetRule(ctx, name)
	if err != nil {
		return err
	}
	if err := s.rules.SetEnabled(ctx, name, false); err != nil {
		return err
	}
	if r.Kind == model.TriggerSchedule {
		s.scheduler.Remove(r.Name)
	}
	return nil
}

func (s *triggerService) FireDrift(ctx context.Context, pipelineName, reason string) error {
	rules, err := s.rules.ListByPipeline(ctx, pipelineName)
	if err != nil {
		return err
	}
	var rule *model.TriggerRule
	for i := range rules {
		if rules[i].Kind == model.TriggerDrift {
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		logJSON(map[string]any{
			"component": "trigger",
			"event":     "drift_fire_dropped",
			"level":     "warn",
			"msg":       "no drift trigger rule for pipeline",
			"pipeline":  pipelineName,
			"reason":    reason,
		})
		return nil
	}
	if !rule.Enabled {
		logJSON(map[string]any{
			"component": "trigger",
			"event":     "drift_fire_skipped",
			"msg":       "drift trigger rule is disabled",
			"pipeline":  pipelineName,
			"rule":      rule.Name,
			"reason":    reason,
		})
		return nil
	}
	return s.fire(ctx, rule, reason)
}

func (s *triggerService) HandlePipelineStateChange(ctx context.Context, evt event.PipelineExecutionStateChange) error {
	status := evt.ExecutionStatus()

	if status.Terminal() {
		now := time.Now().UTC()
		if err := s.pipelines.UpdateExecutionStatus(ctx, evt.ExecutionID, status, &now); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("update execution status: %w", err)
			}
			logJSON(map[string]any{
				"component": "trigger",
				"event":     "unknown_execution",
				"level":     "warn",
				"pipeline":  evt.Pipeline,
				"execution": evt.ExecutionID,
				"state":     evt.State,
			})
		}
	}

	// Executing pipelines must not be re-entered: freeze the build stage
	// transition and the trigger rules until the run finishes.
	enable := status.Terminal()
	if err := s.pipelines.SetBuildTransition(ctx, evt.Pipeline, enable); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("set build transition: %w", err)
		}
		logJSON(map[string]any{
			"component": "trigger",
			"event":     "unknown_pipeline",
			"level":     "warn",
			"pipeline":  evt.Pipeline,
			"state":     evt.State,
		})
	}
	return s.setRulesEnabled(ctx, evt.Pipeline, enable)
}

func (s *triggerService) SyncSchedules(ctx context.Context) error {
	rules, err := s.rules.ListEnabledSchedules(ctx)
	if err != nil {
		return fmt.Errorf("list enabled schedules: %w", err)
	}
	for i := range rules {
		if err := s.registerSchedule(&rules[i]); err != nil {
			return err
		}
	}
	return nil
}

// setRulesEnabled flips every rule of a pipeline. A pipeline without rules is
// tolerated; not every pipeline has retraining wired up.
func (s *triggerService) setRulesEnabled(ctx context.Context, pipelineName string, enabled bool) error {
	rules, err := s.rules.ListByPipeline(ctx, pipelineName)
	if err != nil {
		return fmt.Errorf("list trigger rules: %w", err)
	}
	if len(rules) == 0 {
		logJSON(map[string]any{
			"component": "trigger",
			"event":     "no_trigger_rules",
			"level":     "warn",
			"pipeline":  pipelineName,
		})
		return nil
	}
	for i := range rules {
		r := &rules[i]
		if err := s.rules.SetEnabled(ctx, r.Name, enabled); err != nil {
			return fmt.Errorf("set rule %s enabled=%t: %w", r.Name, enabled, err)
		}
		if r.Kind != model.TriggerSchedule {
			continue
		}
		if enabled {
			if err := s.registerSchedule(r); err != nil {
				return err
			}
		} else {
			s.scheduler.Remove(r.Name)
		}
	}
	return nil
}

func (s *triggerService) registerSchedule(r *model.TriggerRule) error {
	rule := *r
	return s.scheduler.Register(rule.Name, rule.ScheduleExpression, func(ctx context.Context) {
		if err := s.fire(ctx, &rule, "schedule "+rule.ScheduleExpression); err != nil {
			logJSON(map[string]any{
				"component":     "trigger",
				"event":         "scheduled_fire_failed",
				"level":         "error",
				"rule":          rule.Name,
				"pipeline":      rule.PipelineName,
				"error_message": err.Error(),
			})
		}
	})
}

// fire starts one pipeline execution for a rule. A disabled build stage
// transition means a run is already in flight; the fire is dropped.
func (s *triggerService) fire(ctx context.Context, r *model.TriggerRule, reason string) error {
	exec, err := s.starter.StartExecution(ctx, r.PipelineName, uuid.New().String(), r.Name, map[string]string{
		"trigger": r.Name,
		"reason":  reason,
	})
	if err != nil {
		if errors.Is(err, ErrTransitionDisabled) {
			logJSON(map[string]any{
				"component": "trigger",
				"event":     "fire_dropped",
				"msg":       "pipeline already executing",
				"rule":      r.Name,
				"pipeline":  r.PipelineName,
			})
			return nil
		}
		return fmt.Errorf("start execution for rule %s: %w", r.Name, err)
	}
	logJSON(map[string]any{
		"component": "trigger",
		"event":     "retraining_started",
		"rule":      r.Name,
		"pipeline":  r.PipelineName,
		"execution": exec.ID,
		"reason":    reason,
	})
	return nil
}
