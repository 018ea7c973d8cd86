package services

import (
	"peerchat/errors"
	"peerchat/global"
	"peerchat/schemas"

	"github.com/gofiber/fiber/v2"
)

func findFriend(friends []schemas.FriendSchema, friendID string) (schemas.FriendSchema, bool) {
	for _, friend := range friends {
		if friend.UserID == friendID {
			return friend, true
		}
	}
	return schemas.FriendSchema{}, false
}

// OpenChat switches the session's open conversation to the friend and
// returns its history
func OpenChat(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)
	friendID := c.Params("friendID")

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	friend, found := findFriend(client.Friends.Friends(), friendID)
	if !found {
		return errors.HandleInvalidRequestError(c, "Friend", "unknown")
	}

	if err = client.OpenConversation(global.Context, friend); err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(struct {
		Friend   schemas.FriendSchema
		Messages []schemas.MessageSchema
	}{
		Friend:   friend,
		Messages: client.Session.History(),
	})
}

// CloseChat releases the open conversation
func CloseChat(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	client.CloseConversation()

	return c.JSON(schemas.Message{Message: "OK"})
}

// SendMessage appends a text message to the open conversation
func SendMessage(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	req := new(struct {
		Body string
	})
	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	message, err := client.Session.Send(global.Context, req.Body)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(message)
}

// SendAttachment uploads the multipart file and sends it in the open
// conversation
func SendAttachment(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	header, err := c.FormFile("file")
	if err != nil {
		return errors.HandleBadRequestError(c, "File", "missing")
	}

	file, err := header.Open()
	if err != nil {
		return errors.HandleInternalError(c, "attachment", err.Error())
	}
	defer file.Close()

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	message, err := client.Session.SendAttachment(
		global.Context,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
		c.FormValue("caption"),
	)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(message)
}

// SetAvatar uploads the multipart picture and updates the profile
func SetAvatar(c *fiber.Ctx) error {

	profile := c.Locals("profile").(schemas.ProfileSchema)

	header, err := c.FormFile("file")
	if err != nil {
		return errors.HandleBadRequestError(c, "File", "missing")
	}

	file, err := header.Open()
	if err != nil {
		return errors.HandleInternalError(c, "avatar", err.Error())
	}
	defer file.Close()

	client, err := sessionClient(profile)
	if err != nil {
		return errors.HandleInternalError(c, "session", err.Error())
	}

	url, err := client.SetAvatar(global.Context, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		return errors.HandleClassifiedError(c, err)
	}

	return c.JSON(struct {
		AvatarURL string `json:"avatar_url"`
	}{AvatarURL: url})
}
