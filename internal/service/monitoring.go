package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"driftwatch/internal/drift"
	"driftwatch/internal/metrics"
	"driftwatch/internal/model"
	"driftwatch/internal/storage"
)

// violationsFile is the result document a monitoring run writes when it finds
// constraint violations. A run without violations writes nothing.
const violationsFile = "constraint_violations.json"

var ErrResultsPathRequired = errors.New("results path is required")

// MonitoringService evaluates monitoring run results: it reads the constraint
// violations document from the artifact store, extracts baseline drift
// metrics, publishes them, and feeds them to the drift alarms.
type MonitoringService interface {
	// EvaluateResult evaluates one monitoring run. resultsPath is the storage
	// prefix the run wrote its output under. A missing violations document
	// means the run completed clean.
	EvaluateResult(ctx context.Context, jobName, pipelineName, resultsPath string) (*model.MonitoringResult, error)
}

type monitoringService struct {
	store    storage.Storage
	recorder metrics.Recorder
	alarms   AlarmService
}

// NewMonitoringService constructs a new MonitoringService.
func NewMonitoringService(store storage.Storage, recorder metrics.Recorder, alarms AlarmService) MonitoringService {
	return &monitoringService{store: store, recorder: recorder, alarms: alarms}
}

func (s *monitoringService) EvaluateResult(ctx context.Context, jobName, pipelineName, resultsPath string) (*model.MonitoringResult, error) {
	if resultsPath == "" {
		return nil, ErrResultsPathRequired
	}
	key := resultsPath
	if !strings.HasSuffix(key, violationsFile) {
		key = path.Join(key, violationsFile)
	}

	result := &model.MonitoringResult{
		JobName:      jobName,
		PipelineName: pipelineName,
		Status:       model.MonitoringCompleted,
		EvaluatedAt:  time.Now().UTC(),
	}

	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logJSON(map[string]any{
				"component": "monitoring",
				"event":     "monitoring_clean",
				"job":       jobName,
				"pipeline":  pipelineName,
				"key":       key,
			})
			return result, nil
		}
		return nil, fmt.Errorf("get violations document: %w", err)
	}
	defer rc.Close()

	doc, err := drift.ParseViolations(rc)
	if err != nil {
		return nil, err
	}
	driftMetrics, err := drift.BaselineDrift(doc, pipelineName)
	if err != nil {
		return nil, err
	}

	for _, m := range driftMetrics {
		s.recorder.RecordDrift(m)
		if err := s.alarms.Evaluate(ctx, m); err != nil {
			return nil, err
		}
	}

	// The run writes the document only when it found violations, so its
	// presence alone marks the run, even when none of the violations are
	// baseline drift checks.
	result.Status = model.MonitoringCompletedWithViolations
	result.Metrics = driftMetrics
	logJSON(map[string]any{
		"component": "monitoring",
		"event":     "monitoring_evaluated",
		"job":       jobName,
		"pipeline":  pipelineName,
		"status":    string(result.Status),
		"metrics":   len(driftMetrics),
	})
	return result, nil
}
