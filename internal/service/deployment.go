package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/config"
	"driftwatch/internal/event"
	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

var (
	ErrUnknownStage         = errors.New("unknown deployment stage")
	ErrDeploymentNotFound   = errors.New("endpoint deployment not found")
	ErrPackageNotApproved   = errors.New("pinned model package is not approved")
	ErrInvalidPinnedVersion = errors.New("invalid pinned model package version")
)

// DeploymentListResult is the service-level DTO for paginated deployments.
type DeploymentListResult struct {
	Items []model.EndpointDeployment `json:"data"`
	Total int                        `json:"total"`
}

// DeploymentService serves approved model packages behind per-stage
// endpoints. Each stage is parameterized by its <stage>-config.json file:
// instance sizing, traffic weight, autoscaling, and the optional monitoring
// schedule with its drift alarm.
type DeploymentService interface {
	// Deploy creates or updates the endpoint of a group for one stage. The
	// deployed package is the stage config's pinned version, or the latest
	// approved package when no version is pinned. Updating an endpoint reuses
	// its existing variant name.
	Deploy(ctx context.Context, group, stage string) (*model.EndpointDeployment, error)

	// GetDeployment returns the deployment for an endpoint name.
	GetDeployment(ctx context.Context, endpointName string) (*model.EndpointDeployment, error)

	// ListDeployments returns deployments using limit/offset and a total count.
	ListDeployments(ctx context.Context, limit, offset int) (*DeploymentListResult, error)

	// HandleModelPackageStateChange applies a registry approval transition.
	// An approval deploys the package's group to every configured stage.
	HandleModelPackageStateChange(ctx context.Context, evt event.ModelPackageStateChange) error
}

type deploymentService struct {
	repo       repository.DeploymentRepository
	registry   RegistryService
	alarms     AlarmService
	monitoring MonitoringService
	scheduler  ScheduleRegistrar
	project    config.ProjectConfig
	stages     []string
	configs    map[string]*config.DeploymentConfig
}

// NewDeploymentService constructs a new DeploymentService. stages preserves
// the configured deployment order; configs holds one entry per stage.
func NewDeploymentService(
	repo repository.DeploymentRepository,
	registry RegistryService,
	alarms AlarmService,
	monitoring MonitoringService,
	scheduler ScheduleRegistrar,
	project config.ProjectConfig,
	stages []string,
	configs map[string]*config.DeploymentConfig,
) DeploymentService {
	return &deploymentService{
		repo:       repo,
		registry:   registry,
		alarms:     alarms,
		monitoring: monitoring,
		scheduler:  scheduler,
		project:    project,
		stages:     stages,
		configs:    configs,
	}
}

func (s *deploymentService) Deploy(ctx context.Context, group, stage string) (*model.EndpointDeployment, error) {
	if group == "" {
		return nil, ErrGroupNameRequired
	}
	cfg, ok := s.configs[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}

	pkg, err := s.resolvePackage(ctx, group, cfg)
	if err != nil {
		return nil, err
	}

	endpointName := group + "-" + stage
	existing, err := s.repo.FindByEndpoint(ctx, endpointName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	d := &model.EndpointDeployment{
		ID:             uuid.New().String(),
		EndpointName:   endpointName,
		StageName:      stage,
		GroupName:      group,
		PackageVersion: pkg.Version,
		InstanceCount:  cfg.InstanceCount,
		InstanceType:   cfg.InstanceType,
		Status:         model.DeploymentCreating,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	d.VariantName, d.InitialVariantWeight = variantOf(cfg, existing)
	if vc := cfg.VariantConfig; vc != nil {
		d.InstanceCount = vc.InstanceCount
		d.InstanceType = vc.InstanceType
	}
	if existing != nil {
		d.ID = existing.ID
		d.Status = model.DeploymentUpdating
		d.CreatedAt = existing.CreatedAt
	}
	if ac := cfg.AutoScaling; ac != nil {
		d.AutoScaling = &model.AutoScaling{
			MinCapacity:      ac.MinCapacity,
			MaxCapacity:      ac.MaxCapacity,
			TargetValue:      ac.TargetValue,
			ScaleInCooldown:  ac.ScaleInCooldown,
			ScaleOutCooldown: ac.ScaleOutCooldown,
		}
	}

	if sc := cfg.ScheduleConfig; sc != nil {
		d.DataCapture = &model.DataCapture{
			Enabled:            true,
			DestinationPath:    "data-capture/" + endpointName,
			SamplingPercentage: sc.DataCaptureSamplingPercentage,
		}
		d.MonitoringScheduleName = endpointName + "-monitor"
	}

	stored, err := s.repo.Upsert(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("save deployment: %w", err)
	}

	// Wire the alarm and the monitoring cron only once the deployment row
	// exists; a failed save must not leave live monitoring behind.
	if sc := cfg.ScheduleConfig; sc != nil {
		if err := s.ensureMonitoring(ctx, d, sc); err != nil {
			return nil, err
		}
	}
	logJSON(map[string]any{
		"component": "deployment",
		"event":     "endpoint_deployed",
		"endpoint":  endpointName,
		"stage":     stage,
		"group":     group,
		"version":   pkg.Version,
		"status":    string(stored.Status),
	})
	return stored, nil
}

// resolvePackage picks the package to serve: a pinned version from the stage
// config, or the latest approved one. Pinned versions must be approved too.
func (s *deploymentService) resolvePackage(ctx context.Context, group string, cfg *config.DeploymentConfig) (*model.ModelPackage, error) {
	vc := cfg.VariantConfig
	if vc == nil || vc.ModelPackageVersion == "" || vc.ModelPackageVersion == "latest" {
		return s.registry.LatestApproved(ctx, group)
	}
	version, err := strconv.Atoi(vc.ModelPackageVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPinnedVersion, vc.ModelPackageVersion)
	}
	pkg, err := s.registry.GetPackage(ctx, group, version)
	if err != nil {
		return nil, err
	}
	if pkg.ApprovalStatus != model.ApprovalApproved {
		return nil, fmt.Errorf("%w: %s version %d is %s", ErrPackageNotApproved, group, version, pkg.ApprovalStatus)
	}
	return pkg, nil
}

// variantOf picks the variant name and weight. An endpoint keeps the variant
// name it was created with: changing it during an update breaks autoscaling
// deregistration of the old variant.
func variantOf(cfg *config.DeploymentConfig, existing *model.EndpointDeployment) (string, float64) {
	weight := 1.0
	name := model.DefaultVariantName
	if vc := cfg.VariantConfig; vc != nil {
		weight = vc.InitialVariantWeight
		if vc.VariantName != "" {
			name = vc.VariantName
		}
	}
	if existing != nil {
		name = existing.VariantName
	}
	return name, weight
}

// ensureMonitoring upserts the endpoint's drift alarm and registers the cron
// job that evaluates the monitoring output written under the data capture
// destination.
func (s *deploymentService) ensureMonitoring(ctx context.Context, d *model.EndpointDeployment, sc *config.ScheduleConfig) error {
	pipelineName := s.buildPipelineName()
	alarm := &model.Alarm{
		Name:               d.EndpointName + "-threshold",
		PipelineName:       pipelineName,
		MetricName:         sc.MetricName,
		Threshold:          sc.MetricThreshold,
		ComparisonOperator: model.ComparisonOperator(sc.ComparisonOperator),
		EvaluationPeriods:  sc.EvaluationPeriods,
		DatapointsToAlarm:  sc.DatapointsToAlarm,
		PeriodSeconds:      sc.Period,
		Statistic:          sc.Statistic,
	}
	if _, err := s.alarms.UpsertAlarm(ctx, alarm); err != nil {
		return fmt.Errorf("upsert drift alarm: %w", err)
	}

	scheduleName := d.MonitoringScheduleName
	resultsPath := "monitoring/" + d.EndpointName
	return s.scheduler.Register(scheduleName, sc.ScheduleExpression, func(ctx context.Context) {
		if _, err := s.monitoring.EvaluateResult(ctx, scheduleName, pipelineName, resultsPath); err != nil {
			logJSON(map[string]any{
				"component":     "deployment",
				"event":         "monitoring_run_failed",
				"level":         "error",
				"schedule":      scheduleName,
				"endpoint":      d.EndpointName,
				"error_message": err.Error(),
			})
		}
	})
}

// buildPipelineName is the retraining target of drift alarms: the project's
// model build pipeline.
func (s *deploymentService) buildPipelineName() string {
	return s.project.Name + "-build"
}

func (s *deploymentService) GetDeployment(ctx context.Context, endpointName string) (*model.EndpointDeployment, error) {
	if endpointName == "" {
		return nil, ErrDeploymentNotFound
	}
	d, err := s.repo.FindByEndpoint(ctx, endpointName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeploymentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *deploymentService) ListDeployments(ctx context.Context, limit, offset int) (*DeploymentListResult, error) {
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
	return &DeploymentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *deploymentService) HandleModelPackageStateChange(ctx context.Context, evt event.ModelPackageStateChange) error {
	status := model.ApprovalStatus(evt.ModelApprovalStatus)
	if _, err := s.registry.UpdateApproval(ctx, evt.ModelPackageGroupName, evt.ModelPackageVersion, status); err != nil {
		if !errors.Is(err, ErrPackageNotFound) {
			return err
		}
		logJSON(map[string]any{
			"component": "deployment",
			"event":     "unknown_model_package",
			"level":     "warn",
			"group":     evt.ModelPackageGroupName,
			"version":   evt.ModelPackageVersion,
		})
		return nil
	}

	if status != model.ApprovalApproved {
		logJSON(map[string]any{
			"component": "deployment",
			"event":     "approval_skipped",
			"group":     evt.ModelPackageGroupName,
			"version":   evt.ModelPackageVersion,
			"status":    evt.ModelApprovalStatus,
		})
		return nil
	}

	for _, stage := range s.stages {
		if _, err := s.Deploy(ctx, evt.ModelPackageGroupName, stage); err != nil {
			return fmt.Errorf("deploy %s to %s: %w", evt.ModelPackageGroupName, stage, err)
		}
	}
	return nil
}
