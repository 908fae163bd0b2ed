package handler

import (
	"github.com/gofiber/fiber/v2"

	"healthdash/internal/auth"
	"healthdash/internal/http/middleware"
	"healthdash/internal/service"
)

// Login signs in, or registers when register=true. Both are mocks that accept any
// well-formed credentials.
//
// @Summary Log in or register
// @Tags session
// @Accept json
// @Produce json
// @Param register query bool false "registration form"
// @Param credentials body auth.Credentials true "credentials"
// @Success 201 {object} service.Session
// @Failure 400 {object} errorPayload
// @Router /session [post]
func Login(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var creds auth.Credentials
		if err := c.BodyParser(&creds); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := svc.Login(c.UserContext(), creds, c.QueryBool("register", false))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// CurrentSession returns the signed-in user.
//
// @Summary Current user
// @Tags session
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errorPayload
// @Router /session [get]
func CurrentSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u, ok := middleware.CurrentUser(c); ok {
			return c.JSON(u)
		}
		u, err := svc.Current(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// Logout forgets the stored user, which voids every issued session token.
//
// @Summary Log out
// @Tags session
// @Success 204
// @Router /session [delete]
func Logout(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext()); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
