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

var pipelineColumns = []string{
	"name", "kind", "definition_path", "build_transition_enabled", "created_at",
}

var executionColumns = []string{
	"id", "pipeline_name", "display_name", "status",
	"client_request_token", "parameters", "started_at", "finished_at",
}

func TestPipelinePostgres_CreatePipeline(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewPipelinePostgres(db)

	p := &model.Pipeline{
		Name:                   "churn-build",
		Kind:                   model.PipelineBuild,
		DefinitionPath:         "pipelines/churn-build.yaml",
		BuildTransitionEnabled: true,
		CreatedAt:              now,
	}

	mock.ExpectQuery("INSERT INTO pipelines").
		WithArgs(p.Name, p.Kind, p.DefinitionPath, p.BuildTransitionEnabled, p.CreatedAt).
		WillReturnRows(sqlmock.NewRows(pipelineColumns).
			AddRow(p.Name, "build", p.DefinitionPath, true, now))

	out, err := repo.CreatePipeline(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "churn-build", out.Name)
	assert.True(t, out.BuildTransitionEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelinePostgres_FindPipeline(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPipelinePostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM pipelines").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindPipeline(context.Background(), "missing")

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPipelinePostgres_SetBuildTransition(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectExec("UPDATE pipelines SET build_transition_enabled").
			WithArgs("churn-build", false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetBuildTransition(context.Background(), "churn-build", false)

		assert.NoError(t, err)
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectExec("UPDATE pipelines SET build_transition_enabled").
			WithArgs("missing", true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetBuildTransition(context.Background(), "missing", true)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPipelinePostgres_CreateExecution(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewPipelinePostgres(db)

	e := &model.PipelineExecution{
		ID:                 "exec-1",
		PipelineName:       "churn-build",
		DisplayName:        "nightly",
		Status:             model.ExecutionExecuting,
		ClientRequestToken: "token-1",
		Parameters:         map[string]string{"trigger": "nightly-rule"},
		StartedAt:          now,
	}

	mock.ExpectQuery("INSERT INTO pipeline_executions").
		WithArgs(e.ID, e.PipelineName, e.DisplayName, e.Status, e.ClientRequestToken,
			[]byte(`{"trigger":"nightly-rule"}`), e.StartedAt).
		WillReturnRows(sqlmock.NewRows(executionColumns).
			AddRow(e.ID, e.PipelineName, e.DisplayName, "Executing",
				e.ClientRequestToken, []byte(`{"trigger":"nightly-rule"}`), now, nil))

	out, err := repo.CreateExecution(context.Background(), e)

	require.NoError(t, err)
	assert.Equal(t, "exec-1", out.ID)
	assert.Equal(t, "nightly-rule", out.Parameters["trigger"])
	assert.Nil(t, out.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPipelinePostgres_FindExecutionByToken(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM pipeline_executions").
			WithArgs("token-1").
			WillReturnRows(sqlmock.NewRows(executionColumns).
				AddRow("exec-1", "churn-build", "nightly", "Succeeded", "token-1", nil, now, now))

		e, err := repo.FindExecutionByToken(context.Background(), "token-1")

		require.NoError(t, err)
		assert.Equal(t, "exec-1", e.ID)
		assert.Empty(t, e.Parameters)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectQuery("SELECT (.+) FROM pipeline_executions").
			WithArgs("unseen-token").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindExecutionByToken(context.Background(), "unseen-token")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPipelinePostgres_ListExecutions(t *testing.T) {
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewPipelinePostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pipeline_executions").
		WithArgs("churn-build").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM pipeline_executions").
		WithArgs("churn-build", 10, 0).
		WillReturnRows(sqlmock.NewRows(executionColumns).
			AddRow("exec-1", "churn-build", "nightly", "Failed", "token-1", nil, now, now))

	res, err := repo.ListExecutions(context.Background(), "churn-build", repository.PageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, model.ExecutionFailed, res.Items[0].Status)
}

func TestPipelinePostgres_UpdateExecutionStatus(t *testing.T) {
	now := time.Now().UTC()

	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectExec("UPDATE pipeline_executions").
			WithArgs("exec-1", model.ExecutionSucceeded, &now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateExecutionStatus(context.Background(), "exec-1", model.ExecutionSucceeded, &now)

		assert.NoError(t, err)
	})

	t.Run("unknown execution", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPipelinePostgres(db)

		mock.ExpectExec("UPDATE pipeline_executions").
			WithArgs("missing", model.ExecutionSucceeded, &now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateExecutionStatus(context.Background(), "missing", model.ExecutionSucceeded, &now)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
