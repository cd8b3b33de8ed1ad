package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/service"
)

type deployRequest struct {
	Group string `json:"group"`
	Stage string `json:"stage"`
}

// Deploy creates or updates the endpoint of a group for one stage.
func Deploy(svc service.DeploymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deployRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		d, err := svc.Deploy(c.UserContext(), req.Group, req.Stage)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrGroupNameRequired):
				return writeError(c, fiber.StatusBadRequest, "GROUP_REQUIRED", "group is required")
			case errors.Is(err, service.ErrUnknownStage):
				return writeError(c, fiber.StatusBadRequest, "UNKNOWN_STAGE", "unknown deployment stage")
			case errors.Is(err, service.ErrNoApprovedPackages):
				return writeError(c, fiber.StatusConflict, "NO_APPROVED_PACKAGES", "no approved model packages in group")
			case errors.Is(err, service.ErrPackageNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package not found")
			case errors.Is(err, service.ErrPackageNotApproved):
				return writeError(c, fiber.StatusConflict, "PACKAGE_NOT_APPROVED", "pinned model package is not approved")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// GetDeployment returns the deployment for an endpoint name.
func GetDeployment(svc service.DeploymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.GetDeployment(c.UserContext(), c.Params("endpoint"))
		if err != nil {
			if errors.Is(err, service.ErrDeploymentNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "endpoint deployment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(d)
	}
}

// ListDeployments returns endpoint deployments with limit & offset.
func ListDeployments(svc service.DeploymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListDeployments(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
