package routes

import (
	"peerchat/middlewares"
	"peerchat/services"

	"github.com/gofiber/fiber/v2"
)

func userRoutes(api fiber.Router) {
	user := api.Group("user", middlewares.Authenticate)
	user.Put("/avatar", services.SetAvatar)
}
