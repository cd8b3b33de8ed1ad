package handler

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/model"
	"driftwatch/internal/service"
)

// CreatePipeline registers a pipeline from a YAML definition document posted
// as the request body.
func CreatePipeline(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return writeError(c, fiber.StatusBadRequest, "DEFINITION_REQUIRED", "pipeline definition is required")
		}
		p, err := svc.CreatePipeline(c.UserContext(), bytes.NewReader(body))
		if err != nil {
			if errors.Is(err, service.ErrDefinitionNil) {
				return writeError(c, fiber.StatusBadRequest, "DEFINITION_REQUIRED", "pipeline definition is required")
			}
			return writeError(c, fiber.StatusBadRequest, "INVALID_DEFINITION", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GetPipeline returns a pipeline by name.
func GetPipeline(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetPipeline(c.UserContext(), c.Params("name"))
		if err != nil {
			if errors.Is(err, service.ErrPipelineNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "pipeline not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}

// ListPipelines returns all registered pipelines.
func ListPipelines(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pipelines, err := svc.ListPipelines(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": pipelines})
	}
}

type startExecutionRequest struct {
	ClientRequestToken string            `json:"client_request_token"`
	DisplayName        string            `json:"display_name"`
	Parameters         map[string]string `json:"parameters"`
}

// StartExecution starts a pipeline run. Replaying a client request token
// returns the execution it originally created.
func StartExecution(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req startExecutionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		exec, err := svc.StartExecution(c.UserContext(), c.Params("name"), req.ClientRequestToken, req.DisplayName, req.Parameters)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRequired):
				return writeError(c, fiber.StatusBadRequest, "TOKEN_REQUIRED", "client request token is required")
			case errors.Is(err, service.ErrPipelineNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "pipeline not found")
			case errors.Is(err, service.ErrTransitionDisabled):
				return writeError(c, fiber.StatusConflict, "TRANSITION_DISABLED", "build stage transition is disabled")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(exec)
	}
}

// GetExecution returns a pipeline execution by ID.
func GetExecution(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		exec, err := svc.GetExecution(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrExecutionNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "pipeline execution not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(exec)
	}
}

// ListExecutions returns a pipeline's executions, newest first, with limit & offset.
func ListExecutions(svc service.PipelineService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListExecutions(c.UserContext(), c.Params("name"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

type createRuleRequest struct {
	Name               string `json:"name"`
	Kind               string `json:"kind"`
	ScheduleExpression string `json:"schedule_expression"`
}

// CreateTriggerRule registers a retraining trigger rule for a pipeline.
func CreateTriggerRule(svc service.TriggerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createRuleRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		rule, err := svc.CreateRule(c.UserContext(), req.Name, c.Params("name"), model.TriggerKind(req.Kind), req.ScheduleExpression)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRuleNameRequired),
				errors.Is(err, service.ErrInvalidRuleKind),
				errors.Is(err, service.ErrScheduleRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_RULE", err.Error())
			case errors.Is(err, service.ErrPipelineNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "pipeline not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(rule)
	}
}

// ListTriggerRules returns all trigger rules of a pipeline.
func ListTriggerRules(svc service.TriggerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rules, err := svc.ListRules(c.UserContext(), c.Params("name"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": rules})
	}
}

// SetTriggerRuleEnabled enables or disables a trigger rule.
func SetTriggerRuleEnabled(svc service.TriggerService, enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		var err error
		if enabled {
			err = svc.EnableRule(c.UserContext(), name)
		} else {
			err = svc.DisableRule(c.UserContext(), name)
		}
		if err != nil {
			if errors.Is(err, service.ErrRuleNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "trigger rule not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
