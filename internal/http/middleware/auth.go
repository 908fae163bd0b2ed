package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"healthdash/internal/model"
)

// UserLocalKey is the fiber locals key holding the authenticated model.User.
const UserLocalKey = "user"

// SessionVerifier resolves a bearer token to its user.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (model.User, error)
}

// RequireSession rejects requests without a valid "Authorization: Bearer" session
// token with 401 and stores the user in the locals otherwise.
func RequireSession(v SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return verifySession(c, v, bearerToken(c.Get(fiber.HeaderAuthorization)))
	}
}

// RequireSocketSession is RequireSession for WebSocket upgrades. Browsers cannot set
// headers on the upgrade request, so the token may also come in the "token" query
// parameter.
func RequireSocketSession(v SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		return verifySession(c, v, token)
	}
}

func verifySession(c *fiber.Ctx, v SessionVerifier, token string) error {
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	user, err := v.Verify(c.UserContext(), token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
	}

	c.Locals(UserLocalKey, user)
	return c.Next()
}

// CurrentUser returns the user stored by RequireSession.
func CurrentUser(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
