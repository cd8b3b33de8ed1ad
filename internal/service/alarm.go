package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"driftwatch/internal/event"
	"driftwatch/internal/metrics"
	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

var (
	ErrAlarmNameRequired  = errors.New("alarm name is required")
	ErrAlarmNotFound      = errors.New("alarm not found")
	ErrMetricNameRequired = errors.New("alarm metric name is required")
	ErrInvalidComparison  = errors.New("invalid comparison operator")
	ErrInvalidAlarmWindow = errors.New("datapoints_to_alarm must be between 1 and evaluation_periods")
)

// AlarmListResult is the service-level DTO for paginated alarms.
type AlarmListResult struct {
	Items []model.Alarm `json:"data"`
	Total int           `json:"total"`
}

// AlarmService evaluates drift metrics against threshold alarms. An alarm
// goes to ALARM when at least DatapointsToAlarm of its last EvaluationPeriods
// datapoints breach the threshold; a transition into ALARM fires retraining.
type AlarmService interface {
	// CreateAlarm registers a new alarm in OK state.
	CreateAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error)

	// UpsertAlarm creates an alarm or updates its threshold configuration in
	// place, preserving the current state. Used by deployments that own a
	// drift alarm per endpoint.
	UpsertAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error)

	// GetAlarm returns an alarm by name.
	GetAlarm(ctx context.Context, name string) (*model.Alarm, error)

	// ListAlarms returns alarms using limit/offset and a total count.
	ListAlarms(ctx context.Context, limit, offset int) (*AlarmListResult, error)

	// Evaluate feeds one drift datapoint to every alarm watching its metric
	// and applies any resulting state transitions.
	Evaluate(ctx context.Context, m model.DriftMetric) error

	// HandleAlarmStateChange applies an externally evaluated alarm state
	// transition. Events for metrics outside the drift namespace or for
	// unknown alarms are tolerated and dropped.
	HandleAlarmStateChange(ctx context.Context, evt event.AlarmStateChange) error
}

type alarmService struct {
	repo     repository.AlarmRepository
	recorder metrics.Recorder
	triggers TriggerService
}

// NewAlarmService constructs a new AlarmService.
func NewAlarmService(repo repository.AlarmRepository, recorder metrics.Recorder, triggers TriggerService) AlarmService {
	return &alarmService{repo: repo, recorder: recorder, triggers: triggers}
}

func (s *alarmService) CreateAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	if err := validateAlarm(a); err != nil {
		return nil, err
	}
	a.State = model.AlarmStateInsufficientData
	a.StateUpdatedAt = time.Now().UTC()
	a.CreatedAt = time.Now().UTC()
	return s.repo.Create(ctx, a)
}

func (s *alarmService) UpsertAlarm(ctx context.Context, a *model.Alarm) (*model.Alarm, error) {
	if err := validateAlarm(a); err != nil {
		return nil, err
	}
	a.State = model.AlarmStateInsufficientData
	a.StateUpdatedAt = time.Now().UTC()
	a.CreatedAt = time.Now().UTC()
	return s.repo.Upsert(ctx, a)
}

func (s *alarmService) GetAlarm(ctx context.Context, name string) (*model.Alarm, error) {
	if name == "" {
		return nil, ErrAlarmNameRequired
	}
	a, err := s.repo.Find(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlarmNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *alarmService) ListAlarms(ctx context.Context, limit, offset int) (*AlarmListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AlarmListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *alarmService) Evaluate(ctx context.Context, m model.DriftMetric) error {
	alarms, err := s.repo.FindByMetric(ctx, m.MetricName)
	if err != nil {
		return fmt.Errorf("find alarms for metric %s: %w", m.MetricName, err)
	}
	for i := range alarms {
		if err := s.evaluateOne(ctx, &alarms[i], m.Value); err != nil {
			return err
		}
	}
	return nil
}

// evaluateOne appends the datapoint, re-evaluates the alarm window, and
// applies the state transition when the state changed.
func (s *alarmService) evaluateOne(ctx context.Context, a *model.Alarm, value float64) error {
	if err := s.repo.AppendDatapoint(ctx, a.Name, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("append datapoint to %s: %w", a.Name, err)
	}
	points, err := s.repo.RecentDatapoints(ctx, a.Name, a.EvaluationPeriods)
	if err != nil {
		return fmt.Errorf("load datapoints of %s: %w", a.Name, err)
	}

	newState := evaluateWindow(a, points)
	if newState == a.State {
		return nil
	}
	return s.transition(ctx, a, newState)
}

// evaluateWindow applies M-of-N threshold evaluation over the most recent
// datapoints, newest first.
func evaluateWindow(a *model.Alarm, points []float64) model.AlarmState {
	if len(points) < a.DatapointsToAlarm {
		return model.AlarmStateInsufficientData
	}
	breaching := 0
	for _, v := range points {
		if a.ComparisonOperator.Breaches(v, a.Threshold) {
			breaching++
		}
	}
	if breaching >= a.DatapointsToAlarm {
		return model.AlarmStateAlarm
	}
	return model.AlarmStateOK
}

func (s *alarmService) HandleAlarmStateChange(ctx context.Context, evt event.AlarmStateChange) error {
	if ns := evt.Metric.Namespace; ns != "" && ns != event.DriftMetricNamespace {
		logJSON(map[string]any{
			"component": "alarm",
			"event":     "alarm_event_skipped",
			"msg":       "metric outside drift namespace",
			"alarm":     evt.AlarmName,
			"namespace": ns,
		})
		return nil
	}

	a, err := s.repo.Find(ctx, evt.AlarmName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logJSON(map[string]any{
				"component": "alarm",
				"event":     "unknown_alarm",
				"level":     "warn",
				"alarm":     evt.AlarmName,
				"state":     evt.State.Value,
			})
			return nil
		}
		return err
	}
	newState := model.AlarmState(evt.State.Value)
	if newState == a.State {
		return nil
	}
	return s.transition(ctx, a, newState)
}

// transition persists and publishes a state change, firing retraining when
// the alarm enters ALARM.
func (s *alarmService) transition(ctx context.Context, a *model.Alarm, newState model.AlarmState) error {
	if err := s.repo.UpdateState(ctx, a.Name, newState); err != nil {
		return fmt.Errorf("update alarm state of %s: %w", a.Name, err)
	}
	s.recorder.RecordAlarmState(a.Name, newState)
	logJSON(map[string]any{
		"component": "alarm",
		"event":     "alarm_state_changed",
		"alarm":     a.Name,
		"metric":    a.MetricName,
		"from":      string(a.State),
		"to":        string(newState),
	})
	if newState == model.AlarmStateAlarm {
		reason := fmt.Sprintf("alarm %s on metric %s", a.Name, a.MetricName)
		if err := s.triggers.FireDrift(ctx, a.PipelineName, reason); err != nil {
			return fmt.Errorf("fire retraining for %s: %w", a.Name, err)
		}
	}
	return nil
}

func validateAlarm(a *model.Alarm) error {
	if a.Name == "" {
		return ErrAlarmNameRequired
	}
	if a.MetricName == "" {
		return ErrMetricNameRequired
	}
	if !a.ComparisonOperator.Valid() {
		return ErrInvalidComparison
	}
	if a.EvaluationPeriods <= 0 || a.DatapointsToAlarm <= 0 || a.DatapointsToAlarm > a.EvaluationPeriods {
		return ErrInvalidAlarmWindow
	}
	return nil
}
