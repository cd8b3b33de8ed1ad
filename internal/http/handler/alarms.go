package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/model"
	"driftwatch/internal/service"
)

// CreateAlarm registers a drift alarm.
func CreateAlarm(svc service.AlarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var a model.Alarm
		if err := c.BodyParser(&a); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		stored, err := svc.CreateAlarm(c.UserContext(), &a)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAlarmNameRequired),
				errors.Is(err, service.ErrMetricNameRequired),
				errors.Is(err, service.ErrInvalidComparison),
				errors.Is(err, service.ErrInvalidAlarmWindow):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ALARM", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// GetAlarm returns an alarm by name.
func GetAlarm(svc service.AlarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := svc.GetAlarm(c.UserContext(), c.Params("name"))
		if err != nil {
			if errors.Is(err, service.ErrAlarmNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "alarm not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(a)
	}
}

// ListAlarms returns alarms with limit & offset.
func ListAlarms(svc service.AlarmService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListAlarms(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}
