package routes

import (
	"peerchat/middlewares"
	"peerchat/services"

	"github.com/gofiber/fiber/v2"
)

func relationRoutes(api fiber.Router) {
	relations := api.Group("relations", middlewares.Authenticate)
	relations.Get("/", services.GetRelations)
	relations.Post("/request", services.RequestRelation)
	relations.Post("/accept/:relationID", services.AcceptRelation)
	relations.Delete("/:relationID", services.DeclineRelation)
}
