package services

import (
	"peerchat/errors"
	"peerchat/global"
	"peerchat/schemas"

	"github.com/gofiber/fiber/v2"
)

// Register creates an account with a 4 digit login code
func Register(c *fiber.Ctx) error {

	req := new(schemas.RegisterSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	profile, err := Identity.Register(global.Context, *req)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(profile)
}

// Login authenticates by handle and code and returns the access token
func Login(c *fiber.Ctx) error {

	req := new(schemas.LoginSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	response, err := Identity.LoginWithCode(global.Context, *req)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(response)
}

// Logout drops the session and its live subscriptions
func Logout(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	dropSessionClient(userID)

	if err := Identity.Logout(global.Context, userID); err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(schemas.Message{Message: "OK"})
}
