package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_model_package_groups",
		SQL: `CREATE TABLE IF NOT EXISTS model_package_groups (
  name         TEXT        PRIMARY KEY,
  description  TEXT        NOT NULL DEFAULT '',
  project_name TEXT        NOT NULL DEFAULT '',
  project_id   TEXT        NOT NULL DEFAULT '',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_model_packages",
		SQL: `CREATE TABLE IF NOT EXISTS model_packages (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  group_name      TEXT        NOT NULL REFERENCES model_package_groups (name),
  version         INT         NOT NULL CHECK (version > 0),
  artifact_path   TEXT        NOT NULL,
  approval_status TEXT        NOT NULL DEFAULT 'Pending',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (group_name, version)
);`,
	},
	{
		Name: "create_index_model_packages_approval",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_model_packages_group_approval ON model_packages (group_name, approval_status, created_at DESC);`,
	},
	{
		Name: "create_table_pipelines",
		SQL: `CREATE TABLE IF NOT EXISTS pipelines (
  name                     TEXT        PRIMARY KEY,
  kind                     TEXT        NOT NULL,
  definition_path          TEXT        NOT NULL DEFAULT '',
  build_transition_enabled BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_pipeline_executions",
		SQL: `CREATE TABLE IF NOT EXISTS pipeline_executions (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  pipeline_name        TEXT        NOT NULL REFERENCES pipelines (name),
  display_name         TEXT        NOT NULL DEFAULT '',
  status               TEXT        NOT NULL DEFAULT 'Executing',
  client_request_token TEXT        NOT NULL UNIQUE,
  parameters           JSONB       NOT NULL DEFAULT '{}',
  started_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  finished_at          TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_pipeline_executions_pipeline",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_pipeline_executions_pipeline ON pipeline_executions (pipeline_name, started_at DESC);`,
	},
	{
		Name: "create_table_trigger_rules",
		SQL: `CREATE TABLE IF NOT EXISTS trigger_rules (
  name                TEXT        PRIMARY KEY,
  pipeline_name       TEXT        NOT NULL REFERENCES pipelines (name),
  kind                TEXT        NOT NULL,
  schedule_expression TEXT        NOT NULL DEFAULT '',
  enabled             BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_trigger_rules_pipeline",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_trigger_rules_pipeline ON trigger_rules (pipeline_name);`,
	},
	{
		Name: "create_table_alarms",
		SQL: `CREATE TABLE IF NOT EXISTS alarms (
  name                TEXT             PRIMARY KEY,
  pipeline_name       TEXT             NOT NULL DEFAULT '',
  metric_name         TEXT             NOT NULL,
  threshold           DOUBLE PRECISION NOT NULL,
  comparison_operator TEXT             NOT NULL DEFAULT 'GreaterThanThreshold',
  evaluation_periods  INT              NOT NULL DEFAULT 1,
  datapoints_to_alarm INT              NOT NULL DEFAULT 1,
  period_seconds      INT              NOT NULL DEFAULT 60,
  statistic           TEXT             NOT NULL DEFAULT 'Average',
  state               TEXT             NOT NULL DEFAULT 'INSUFFICIENT_DATA',
  state_updated_at    TIMESTAMPTZ      NOT NULL DEFAULT now(),
  created_at          TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_alarms_metric",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_alarms_metric ON alarms (metric_name);`,
	},
	{
		Name: "create_table_alarm_datapoints",
		SQL: `CREATE TABLE IF NOT EXISTS alarm_datapoints (
  id          BIGSERIAL        PRIMARY KEY,
  alarm_name  TEXT             NOT NULL REFERENCES alarms (name) ON DELETE CASCADE,
  value       DOUBLE PRECISION NOT NULL,
  observed_at TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_alarm_datapoints_alarm",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_alarm_datapoints_alarm ON alarm_datapoints (alarm_name, observed_at DESC);`,
	},
	{
		Name: "create_table_endpoint_deployments",
		SQL: `CREATE TABLE IF NOT EXISTS endpoint_deployments (
  id                       UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  endpoint_name            TEXT             NOT NULL UNIQUE,
  stage_name               TEXT             NOT NULL,
  group_name               TEXT             NOT NULL REFERENCES model_package_groups (name),
  package_version          INT              NOT NULL,
  variant_name             TEXT             NOT NULL,
  instance_count           INT              NOT NULL DEFAULT 1,
  instance_type            TEXT             NOT NULL,
  initial_variant_weight   DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  auto_scaling             JSONB,
  data_capture             JSONB,
  monitoring_schedule_name TEXT             NOT NULL DEFAULT '',
  status                   TEXT             NOT NULL DEFAULT 'Creating',
  created_at               TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at               TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks if the 'model_package_groups' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.model_package_groups') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
