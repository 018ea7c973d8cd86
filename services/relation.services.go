package services

import (
	"peerchat/errors"
	"peerchat/global"
	"peerchat/schemas"

	"github.com/gofiber/fiber/v2"
)

// GetRelations returns the live friend list, incoming requests and unread
// counters
func GetRelations(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	return c.JSON(struct {
		Friends  []schemas.FriendSchema
		Requests []schemas.RequestSchema
		Unread   map[string]int
	}{
		Friends:  client.Friends.Friends(),
		Requests: client.Friends.IncomingRequests(),
		Unread:   client.Inbox.Counts(),
	})
}

// RequestRelation sends a friend request to a handle
func RequestRelation(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	req := new(struct {
		Handle string
	})
	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	if err = client.Friends.SendRequest(global.Context, req.Handle); err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(schemas.Message{Message: "OK"})
}

func findRequest(requests []schemas.RequestSchema, relationID string) (schemas.RequestSchema, bool) {
	for _, request := range requests {
		if request.RelationID == relationID {
			return request, true
		}
	}
	return schemas.RequestSchema{}, false
}

// AcceptRelation accepts a pending request by relation id
func AcceptRelation(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)
	relationID := c.Params("relationID")

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	request, found := findRequest(client.Friends.IncomingRequests(), relationID)
	if !found {
		return errors.HandleInvalidRequestError(c, "Request", "unknown")
	}

	result, err := client.Friends.Accept(global.Context, request)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(result)
}

// DeclineRelation declines a pending request by relation id; declining a
// request that is already gone is a no-op
func DeclineRelation(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)
	relationID := c.Params("relationID")

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	request, found := findRequest(client.Friends.IncomingRequests(), relationID)
	if !found {
		request = schemas.RequestSchema{RelationID: relationID}
	}

	if err = client.Friends.Decline(global.Context, request); err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(schemas.Message{Message: "OK"})
}
