package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/model"
	"driftwatch/internal/service"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroup registers a model package group. Creating a group that already
// exists returns the existing group.
func CreateGroup(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createGroupRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		g, err := svc.CreateGroup(c.UserContext(), req.Name, req.Description)
		if err != nil {
			if errors.Is(err, service.ErrGroupNameRequired) {
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "group name is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// GetGroup returns a model package group by name.
func GetGroup(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g, err := svc.GetGroup(c.UserContext(), c.Params("name"))
		if err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package group not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(g)
	}
}

// ListGroups returns model package groups with limit & offset.
func ListGroups(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListGroups(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// RegisterPackage uploads a model artifact (multipart/form-data, field name:
// artifact) and records a new package version in Pending state.
func RegisterPackage(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("artifact")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "ARTIFACT_REQUIRED", "artifact is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "ARTIFACT_OPEN_ERROR", "cannot open uploaded artifact")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		pkg, err := svc.RegisterPackage(c.UserContext(), c.Params("name"), f, fh.Filename, ct, fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package group not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(pkg)
	}
}

// ListPackages returns a group's packages, newest first, with limit & offset.
func ListPackages(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListPackages(c.UserContext(), c.Params("name"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetPackage returns one package version of a group.
func GetPackage(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := strconv.Atoi(c.Params("version"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
		}
		pkg, err := svc.GetPackage(c.UserContext(), c.Params("name"), version)
		if err != nil {
			if errors.Is(err, service.ErrPackageNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(pkg)
	}
}

// LatestApproved returns the most recently created approved package of a group.
func LatestApproved(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pkg, err := svc.LatestApproved(c.UserContext(), c.Params("name"))
		if err != nil {
			if errors.Is(err, service.ErrNoApprovedPackages) {
				return writeError(c, fiber.StatusNotFound, "NO_APPROVED_PACKAGES", "no approved model packages in group")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(pkg)
	}
}

// VersionedApproved returns the approved packages named by the versions query
// parameter (comma-separated), newest first. Every requested version must
// exist and be approved.
func VersionedApproved(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("versions")
		if raw == "" {
			return writeError(c, fiber.StatusBadRequest, "VERSIONS_REQUIRED", "versions query parameter is required")
		}
		var versions []int
		for _, part := range strings.Split(raw, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
			}
			versions = append(versions, v)
		}
		pkgs, err := svc.VersionedApproved(c.UserContext(), c.Params("name"), versions)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrPackageNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package not found")
			case errors.Is(err, service.ErrPackageNotApproved):
				return writeError(c, fiber.StatusConflict, "PACKAGE_NOT_APPROVED", "model package is not approved")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": pkgs})
	}
}

type updateApprovalRequest struct {
	Status string `json:"status"`
}

// UpdateApproval transitions a package's approval status.
func UpdateApproval(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := strconv.Atoi(c.Params("version"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
		}
		var req updateApprovalRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		pkg, err := svc.UpdateApproval(c.UserContext(), c.Params("name"), version, model.ApprovalStatus(req.Status))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidApproval):
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid approval status")
			case errors.Is(err, service.ErrPackageNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(pkg)
	}
}

// ArtifactURL returns a time-limited download link for a package's artifact.
func ArtifactURL(svc service.RegistryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := strconv.Atoi(c.Params("version"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
		}
		u, err := svc.ArtifactURL(c.UserContext(), c.Params("name"), version)
		if err != nil {
			if errors.Is(err, service.ErrPackageNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "model package not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// pageParams parses the limit & offset query parameters. On a malformed
// value it writes the 400 response and reports ok=false.
func pageParams(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}
