package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftwatch/internal/model"
	"driftwatch/internal/repository"
)

var deploymentTestColumns = []string{
	"id", "endpoint_name", "stage_name", "group_name", "package_version", "variant_name",
	"instance_count", "instance_type", "initial_variant_weight", "auto_scaling", "data_capture",
	"monitoring_schedule_name", "status", "created_at", "updated_at",
}

func TestDeploymentPostgres_Upsert(t *testing.T) {
	now := time.Now().UTC()

	t.Run("without optional configs", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		d := &model.EndpointDeployment{
			ID:                   "dep-1",
			EndpointName:         "churn-staging",
			StageName:            "staging",
			GroupName:            "churn",
			PackageVersion:       3,
			VariantName:          model.DefaultVariantName,
			InstanceCount:        1,
			InstanceType:         "ml.t2.medium",
			InitialVariantWeight: 1.0,
			Status:               model.DeploymentCreating,
			CreatedAt:            now,
		}

		mock.ExpectQuery("INSERT INTO endpoint_deployments").
			WithArgs(d.ID, d.EndpointName, d.StageName, d.GroupName, d.PackageVersion,
				d.VariantName, d.InstanceCount, d.InstanceType, d.InitialVariantWeight,
				[]byte(nil), []byte(nil), d.MonitoringScheduleName, d.Status, d.CreatedAt).
			WillReturnRows(sqlmock.NewRows(deploymentTestColumns).
				AddRow(d.ID, d.EndpointName, d.StageName, d.GroupName, d.PackageVersion,
					d.VariantName, d.InstanceCount, d.InstanceType, d.InitialVariantWeight,
					nil, nil, "", "Creating", now, now))

		out, err := repo.Upsert(context.Background(), d)

		require.NoError(t, err)
		assert.Equal(t, "churn-staging", out.EndpointName)
		assert.Nil(t, out.AutoScaling)
		assert.Nil(t, out.DataCapture)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with autoscaling and data capture", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		d := &model.EndpointDeployment{
			ID:                   "dep-2",
			EndpointName:         "churn-prod",
			StageName:            "prod",
			GroupName:            "churn",
			PackageVersion:       3,
			VariantName:          model.DefaultVariantName,
			InstanceCount:        2,
			InstanceType:         "ml.m5.large",
			InitialVariantWeight: 1.0,
			AutoScaling: &model.AutoScaling{
				MinCapacity: 2, MaxCapacity: 10, TargetValue: 750,
				ScaleInCooldown: 60, ScaleOutCooldown: 60,
			},
			DataCapture: &model.DataCapture{
				Enabled:            true,
				DestinationPath:    "data-capture/churn-prod",
				SamplingPercentage: 100,
			},
			MonitoringScheduleName: "churn-prod-monitor",
			Status:                 model.DeploymentUpdating,
			CreatedAt:              now,
		}

		autoScalingJSON := []byte(`{"min_capacity":2,"max_capacity":10,"target_value":750,"scale_in_cooldown":60,"scale_out_cooldown":60}`)
		dataCaptureJSON := []byte(`{"enabled":true,"destination_path":"data-capture/churn-prod","sampling_percentage":100}`)

		mock.ExpectQuery("INSERT INTO endpoint_deployments").
			WithArgs(d.ID, d.EndpointName, d.StageName, d.GroupName, d.PackageVersion,
				d.VariantName, d.InstanceCount, d.InstanceType, d.InitialVariantWeight,
				autoScalingJSON, dataCaptureJSON, d.MonitoringScheduleName, d.Status, d.CreatedAt).
			WillReturnRows(sqlmock.NewRows(deploymentTestColumns).
				AddRow(d.ID, d.EndpointName, d.StageName, d.GroupName, d.PackageVersion,
					d.VariantName, d.InstanceCount, d.InstanceType, d.InitialVariantWeight,
					autoScalingJSON, dataCaptureJSON, d.MonitoringScheduleName, "Updating", now, now))

		out, err := repo.Upsert(context.Background(), d)

		require.NoError(t, err)
		require.NotNil(t, out.AutoScaling)
		assert.Equal(t, 10, out.AutoScaling.MaxCapacity)
		require.NotNil(t, out.DataCapture)
		assert.Equal(t, "data-capture/churn-prod", out.DataCapture.DestinationPath)
		assert.Equal(t, "churn-prod-monitor", out.MonitoringScheduleName)
	})
}

func TestDeploymentPostgres_FindByEndpoint(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM endpoint_deployments").
			WithArgs("churn-staging").
			WillReturnRows(sqlmock.NewRows(deploymentTestColumns).
				AddRow("dep-1", "churn-staging", "staging", "churn", 3, "LatestApproved",
					1, "ml.t2.medium", 1.0, nil, nil, "", "InService", now, now))

		d, err := repo.FindByEndpoint(context.Background(), "churn-staging")

		require.NoError(t, err)
		assert.Equal(t, model.DeploymentInService, d.Status)
		assert.Equal(t, 3, d.PackageVersion)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM endpoint_deployments").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEndpoint(context.Background(), "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDeploymentPostgres_List(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewDeploymentPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM endpoint_deployments").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM endpoint_deployments").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(deploymentTestColumns).
			AddRow("dep-1", "churn-staging", "staging", "churn", 3, "LatestApproved",
				1, "ml.t2.medium", 1.0, nil, nil, "", "Creating", now, now))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
}

func TestDeploymentPostgres_UpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		mock.ExpectExec("UPDATE endpoint_deployments SET status").
			WithArgs("churn-staging", model.DeploymentInService).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), "churn-staging", model.DeploymentInService))
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeploymentPostgres(db)

		mock.ExpectExec("UPDATE endpoint_deployments SET status").
			WithArgs("missing", model.DeploymentInService).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), "missing", model.DeploymentInService)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
