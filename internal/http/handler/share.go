package handler

import (
	"github.com/gofiber/fiber/v2"

	"healthdash/internal/http/middleware"
	"healthdash/internal/service"
)

// CreateShare issues a read-only link to the medical history.
//
// @Summary Create a share link
// @Tags share
// @Produce json
// @Success 201 {object} service.ShareLink
// @Router /api/share [post]
func CreateShare(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := ""
		if u, ok := middleware.CurrentUser(c); ok {
			owner = u.Name
		}
		link, err := svc.Create(c.UserContext(), owner)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(link)
	}
}

// ResolveShare serves the snapshot behind a share token.
//
// @Summary Shared medical history
// @Tags share
// @Produce json
// @Param token path string true "share token"
// @Success 200 {object} service.Snapshot
// @Failure 401 {object} errorPayload
// @Router /share/{token} [get]
func ResolveShare(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Resolve(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(snap)
	}
}
