package handler

import (
	"github.com/gofiber/fiber/v2"

	"healthdash/internal/model"
)

type enableRequest struct {
	Enabled *bool `json:"enabled"`
}

type permissionRequest struct {
	Permission string `json:"permission"`
}

// NotificationStatus returns the preference, permission and armed reminders.
//
// @Summary Notification status
// @Tags notifications
// @Produce json
// @Success 200 {object} notify.Status
// @Router /api/notifications [get]
func NotificationStatus(svc NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Status())
	}
}

// SetNotifications enables or disables reminders. Enabling may block until the
// dashboard answers the permission prompt.
//
// @Summary Enable or disable reminders
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body enableRequest true "preference"
// @Success 200 {object} notify.Status
// @Failure 400 {object} errorPayload
// @Router /api/notifications [put]
func SetNotifications(svc NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req enableRequest
		if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "enabled is required")
		}
		st, err := svc.SetEnabled(c.UserContext(), *req.Enabled)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}

// ReportPermission records the platform permission seen by the dashboard.
//
// @Summary Report notification permission
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body permissionRequest true "default, granted or denied"
// @Success 200 {object} notify.Status
// @Failure 400 {object} errorPayload
// @Router /api/notifications/permission [put]
func ReportPermission(svc NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req permissionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		p, err := model.ParsePermission(req.Permission)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERMISSION", "permission must be default, granted or denied")
		}
		st, err := svc.ReportPermission(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}
