package handler

import (
	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/event"
	"driftwatch/internal/service"
)

// Webhook handlers for platform events. Payload shapes are a wire contract;
// they are validated before being handed to the services. Tolerated events
// (unknown pipelines, alarms, packages) are accepted and dropped inside the
// services, so retried deliveries stay idempotent.

// ModelPackageStateChangeEvent applies a registry approval transition. An
// approval deploys the package's group to every configured stage.
func ModelPackageStateChangeEvent(svc service.DeploymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var evt event.ModelPackageStateChange
		if err := c.BodyParser(&evt); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := evt.Validate(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", err.Error())
		}
		if err := svc.HandleModelPackageStateChange(c.UserContext(), evt); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

// PipelineExecutionStateChangeEvent applies a pipeline execution state
// transition, toggling the build stage transition and the trigger rules.
func PipelineExecutionStateChangeEvent(svc service.TriggerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var evt event.PipelineExecutionStateChange
		if err := c.BodyParser(&evt); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := evt.Validate(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", err.Error())
		}
		if err := svc.HandlePipelineStateChange(c.UserContext(), evt); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

// AlarmStateChangeEvent applies an externally evaluated alarm state
// transition; entering ALARM fires retraining.
func AlarmStateChangeEvent(svc service.AlarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var evt event.AlarmStateChange
		if err := c.BodyParser(&evt); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := evt.Validate(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", err.Error())
		}
		if err := svc.HandleAlarmStateChange(c.UserContext(), evt); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

type monitoringResultRequest struct {
	JobName      string `json:"job_name"`
	PipelineName string `json:"pipeline_name"`
	ResultsPath  string `json:"results_path"`
}

// MonitoringResultEvent evaluates one monitoring run's output on demand,
// outside its cron schedule.
func MonitoringResultEvent(svc service.MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req monitoringResultRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.ResultsPath == "" {
			return writeError(c, fiber.StatusBadRequest, "RESULTS_PATH_REQUIRED", "results_path is required")
		}
		// The pipeline name becomes a metric dimension; an empty one would
		// silently split the drift series.
		if req.PipelineName == "" {
			return writeError(c, fiber.StatusBadRequest, "PIPELINE_NAME_REQUIRED", "pipeline_name is required")
		}
		res, err := svc.EvaluateResult(c.UserContext(), req.JobName, req.PipelineName, req.ResultsPath)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
