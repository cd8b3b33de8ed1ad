package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/config"
	"driftwatch/internal/event"
	"driftwatch/internal/model"
	repomocks "driftwatch/internal/repository/mocks"
	"driftwatch/internal/service"
	servicemocks "driftwatch/internal/service/mocks"
)

type deploymentFixture struct {
	svc        service.DeploymentService
	repo       *repomocks.MockDeploymentRepository
	registry   *servicemocks.MockRegistryService
	alarms     *servicemocks.MockAlarmService
	monitoring *servicemocks.MockMonitoringService
	scheduler  *fakeScheduler
}

func newDeploymentFixture(t *testing.T, stages []string, configs map[string]*config.DeploymentConfig) *deploymentFixture {
	t.Helper()
	f := &deploymentFixture{
		repo:       new(repomocks.MockDeploymentRepository),
		registry:   new(servicemocks.MockRegistryService),
		alarms:     new(servicemocks.MockAlarmService),
		monitoring: new(servicemocks.MockMonitoringService),
		scheduler:  newFakeScheduler(),
	}
	f.svc = service.NewDeploymentService(
		f.repo, f.registry, f.alarms, f.monitoring, f.scheduler,
		config.ProjectConfig{Name: "drift-detection"}, stages, configs,
	)
	return f
}

func stagingConfig() *config.DeploymentConfig {
	return &config.DeploymentConfig{
		StageName:     "staging",
		InstanceCount: 1,
		InstanceType:  "ml.t2.medium",
	}
}

func prodConfig() *config.DeploymentConfig {
	return &config.DeploymentConfig{
		StageName:     "prod",
		InstanceCount: 2,
		InstanceType:  "ml.m5.large",
		VariantConfig: &config.VariantConfig{
			InitialVariantWeight: 1.0,
			InstanceCount:        2,
			InstanceType:         "ml.m5.large",
		},
		AutoScaling: &config.AutoScalingConfig{
			MinCapacity: 2, MaxCapacity: 10, TargetValue: 750,
			ScaleInCooldown: 60, ScaleOutCooldown: 60,
		},
		ScheduleConfig: &config.ScheduleConfig{
			ScheduleExpression:            "0 * * * *",
			MetricName:                    "feature_baseline_drift_total_amount",
			MetricThreshold:               0.4,
			ComparisonOperator:            "GreaterThanThreshold",
			Period:                        3600,
			EvaluationPeriods:             1,
			DatapointsToAlarm:             1,
			Statistic:                     "Average",
			DataCaptureSamplingPercentage: 100,
		},
	}
}

func approvedPackage(version int) *model.ModelPackage {
	return &model.ModelPackage{
		ID:             "pkg-1",
		GroupName:      "churn",
		Version:        version,
		ApprovalStatus: model.ApprovalApproved,
	}
}

func TestDeploymentService_Deploy(t *testing.T) {
	t.Run("new staging endpoint serves the latest approved package", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		f.registry.On("LatestApproved", mock.Anything, "churn").Return(approvedPackage(3), nil)
		f.repo.On("FindByEndpoint", mock.Anything, "churn-staging").Return(nil, sql.ErrNoRows)
		f.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(d *model.EndpointDeployment) bool {
			return d.EndpointName == "churn-staging" &&
				d.PackageVersion == 3 &&
				d.VariantName == model.DefaultVariantName &&
				d.InitialVariantWeight == 1.0 &&
				d.Status == model.DeploymentCreating &&
				d.DataCapture == nil
		})).Return(&model.EndpointDeployment{EndpointName: "churn-staging", Status: model.DeploymentCreating}, nil)

		d, err := f.svc.Deploy(context.Background(), "churn", "staging")

		require.NoError(t, err)
		assert.Equal(t, "churn-staging", d.EndpointName)
		f.repo.AssertExpectations(t)
		// No schedule config: no alarm, no monitoring schedule.
		f.alarms.AssertNotCalled(t, "UpsertAlarm", mock.Anything, mock.Anything)
		assert.Empty(t, f.scheduler.specs)
	})

	t.Run("updating an endpoint keeps its variant name and identity", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		created := time.Now().UTC().Add(-24 * time.Hour)
		existing := &model.EndpointDeployment{
			ID:           "dep-1",
			EndpointName: "churn-staging",
			VariantName:  "Canary",
			CreatedAt:    created,
		}
		f.registry.On("LatestApproved", mock.Anything, "churn").Return(approvedPackage(4), nil)
		f.repo.On("FindByEndpoint", mock.Anything, "churn-staging").Return(existing, nil)
		f.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(d *model.EndpointDeployment) bool {
			return d.ID == "dep-1" &&
				d.VariantName == "Canary" &&
				d.Status == model.DeploymentUpdating &&
				d.CreatedAt.Equal(created)
		})).Return(&model.EndpointDeployment{EndpointName: "churn-staging", Status: model.DeploymentUpdating}, nil)

		_, err := f.svc.Deploy(context.Background(), "churn", "staging")

		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("prod deploy wires data capture, alarm, and monitoring schedule", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"prod"}, map[string]*config.DeploymentConfig{
			"prod": prodConfig(),
		})

		f.registry.On("LatestApproved", mock.Anything, "churn").Return(approvedPackage(3), nil)
		f.repo.On("FindByEndpoint", mock.Anything, "churn-prod").Return(nil, sql.ErrNoRows)
		f.alarms.On("UpsertAlarm", mock.Anything, mock.MatchedBy(func(a *model.Alarm) bool {
			return a.Name == "churn-prod-threshold" &&
				a.PipelineName == "drift-detection-build" &&
				a.MetricName == "feature_baseline_drift_total_amount" &&
				a.Threshold == 0.4
		})).Return(validTestAlarm(), nil)
		f.repo.On("Upsert", mock.Anything, mock.MatchedBy(func(d *model.EndpointDeployment) bool {
			return d.AutoScaling != nil && d.AutoScaling.MaxCapacity == 10 &&
				d.DataCapture != nil &&
				d.DataCapture.DestinationPath == "data-capture/churn-prod" &&
				d.MonitoringScheduleName == "churn-prod-monitor"
		})).Return(&model.EndpointDeployment{EndpointName: "churn-prod"}, nil)

		_, err := f.svc.Deploy(context.Background(), "churn", "prod")

		require.NoError(t, err)
		assert.Equal(t, "0 * * * *", f.scheduler.specs["churn-prod-monitor"])
		f.alarms.AssertExpectations(t)

		// The registered job evaluates the endpoint's monitoring output.
		f.monitoring.On("EvaluateResult", mock.Anything, "churn-prod-monitor",
			"drift-detection-build", "monitoring/churn-prod").
			Return(&model.MonitoringResult{Status: model.MonitoringCompleted}, nil)
		f.scheduler.jobs["churn-prod-monitor"](context.Background())
		f.monitoring.AssertExpectations(t)
	})

	t.Run("failed save wires no alarm and no schedule", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"prod"}, map[string]*config.DeploymentConfig{
			"prod": prodConfig(),
		})

		f.registry.On("LatestApproved", mock.Anything, "churn").Return(approvedPackage(3), nil)
		f.repo.On("FindByEndpoint", mock.Anything, "churn-prod").Return(nil, sql.ErrNoRows)
		f.repo.On("Upsert", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset"))

		_, err := f.svc.Deploy(context.Background(), "churn", "prod")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save deployment")
		f.alarms.AssertNotCalled(t, "UpsertAlarm", mock.Anything, mock.Anything)
		assert.Empty(t, f.scheduler.specs)
	})

	t.Run("pinned version must exist and be approved", func(t *testing.T) {
		cfg := stagingConfig()
		cfg.VariantConfig = &config.VariantConfig{ModelPackageVersion: "2", InitialVariantWeight: 1.0,
			InstanceCount: 1, InstanceType: "ml.t2.medium"}
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": cfg,
		})

		pending := approvedPackage(2)
		pending.ApprovalStatus = model.ApprovalPending
		f.registry.On("GetPackage", mock.Anything, "churn", 2).Return(pending, nil)

		_, err := f.svc.Deploy(context.Background(), "churn", "staging")

		assert.ErrorIs(t, err, service.ErrPackageNotApproved)
	})

	t.Run("unparsable pinned version", func(t *testing.T) {
		cfg := stagingConfig()
		cfg.VariantConfig = &config.VariantConfig{ModelPackageVersion: "two"}
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": cfg,
		})

		_, err := f.svc.Deploy(context.Background(), "churn", "staging")

		assert.ErrorIs(t, err, service.ErrInvalidPinnedVersion)
	})

	t.Run("unknown stage", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		_, err := f.svc.Deploy(context.Background(), "churn", "qa")

		assert.ErrorIs(t, err, service.ErrUnknownStage)
	})

	t.Run("nothing approved yet", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		f.registry.On("LatestApproved", mock.Anything, "churn").
			Return(nil, service.ErrNoApprovedPackages)

		_, err := f.svc.Deploy(context.Background(), "churn", "staging")

		assert.ErrorIs(t, err, service.ErrNoApprovedPackages)
	})
}

func TestDeploymentService_GetDeployment(t *testing.T) {
	f := newDeploymentFixture(t, nil, nil)

	f.repo.On("FindByEndpoint", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

	_, err := f.svc.GetDeployment(context.Background(), "missing")

	assert.ErrorIs(t, err, service.ErrDeploymentNotFound)
}

func TestDeploymentService_HandleModelPackageStateChange(t *testing.T) {
	t.Run("approval deploys every configured stage in order", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging", "prod"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
			"prod":    stagingConfigNamed("prod"),
		})

		f.registry.On("UpdateApproval", mock.Anything, "churn", 3, model.ApprovalApproved).
			Return(approvedPackage(3), nil)
		f.registry.On("LatestApproved", mock.Anything, "churn").Return(approvedPackage(3), nil)
		f.repo.On("FindByEndpoint", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)
		f.repo.On("Upsert", mock.Anything, mock.Anything).
			Return(&model.EndpointDeployment{}, nil)

		err := f.svc.HandleModelPackageStateChange(context.Background(), event.ModelPackageStateChange{
			ModelPackageGroupName: "churn",
			ModelPackageVersion:   3,
			ModelApprovalStatus:   "Approved",
		})

		require.NoError(t, err)
		f.repo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("rejection records the status without deploying", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		rejected := approvedPackage(3)
		rejected.ApprovalStatus = model.ApprovalRejected
		f.registry.On("UpdateApproval", mock.Anything, "churn", 3, model.ApprovalRejected).
			Return(rejected, nil)

		err := f.svc.HandleModelPackageStateChange(context.Background(), event.ModelPackageStateChange{
			ModelPackageGroupName: "churn",
			ModelPackageVersion:   3,
			ModelApprovalStatus:   "Rejected",
		})

		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown package is tolerated", func(t *testing.T) {
		f := newDeploymentFixture(t, []string{"staging"}, map[string]*config.DeploymentConfig{
			"staging": stagingConfig(),
		})

		f.registry.On("UpdateApproval", mock.Anything, "ghost", 1, model.ApprovalApproved).
			Return(nil, service.ErrPackageNotFound)

		err := f.svc.HandleModelPackageStateChange(context.Background(), event.ModelPackageStateChange{
			ModelPackageGroupName: "ghost",
			ModelPackageVersion:   1,
			ModelApprovalStatus:   "Approved",
		})

		assert.NoError(t, err)
	})
}

func stagingConfigNamed(stage string) *config.DeploymentConfig {
	cfg := stagingConfig()
	cfg.StageName = stage
	return cfg
}
