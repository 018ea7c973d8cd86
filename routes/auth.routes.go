package routes

import (
	"peerchat/middlewares"
	"peerchat/services"

	"github.com/gofiber/fiber/v2"
)

func authRoutes(api fiber.Router) {
	auth := api.Group("auth")
	auth.Post("/register", services.Register)
	auth.Post("/login", services.Login)
	auth.Post("/logout", middlewares.Authenticate, services.Logout)
}
