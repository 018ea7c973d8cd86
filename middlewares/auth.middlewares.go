package middlewares

import (
	"strings"

	"peerchat/errors"
	"peerchat/global"
	"peerchat/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Identity is the identity collaborator, set by the bootstrap
var Identity identity.Service

func bearerToken(c *fiber.Ctx) string {
	authorization := string(c.Request().Header.Peek("Authorization"))
	chunks := strings.Split(authorization, "Bearer ")
	if len(chunks) != 2 {
		return ""
	}
	return chunks[1]
}

// Authenticate resolves the bearer access token to a user
func Authenticate(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return errors.HandleUnauthorizedError(c)
	}

	profile, err := Identity.CurrentUser(global.Context, token)
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return errors.HandleUnauthorizedError(c)
		}
		return errors.HandleInternalError(c, "authenticate", err.Error())
	}

	c.Locals("userid", profile.UserID)
	c.Locals("profile", profile)
	return c.Next()
}

// AuthenticateStream authenticates the websocket upgrade via query token
func AuthenticateStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return errors.HandleInternalError(c, "websocket_upgrade", fiber.ErrUpgradeRequired.Error())
	}

	profile, err := Identity.CurrentUser(global.Context, c.Query("token"))
	if err != nil {
		return errors.HandleUnauthorizedError(c)
	}

	c.Locals("userid", profile.UserID)
	c.Locals("profile", profile)
	return c.Next()
}
