package routes

import (
	"peerchat/middlewares"
	"peerchat/services"

	"github.com/gofiber/fiber/v2"
)

func chatRoutes(api fiber.Router) {
	chat := api.Group("chat", middlewares.Authenticate)
	chat.Post("/:friendID", services.OpenChat)
	chat.Delete("/", services.CloseChat)
	chat.Post("/:friendID/messages", services.SendMessage)
	chat.Post("/:friendID/attachment", services.SendAttachment)
}
