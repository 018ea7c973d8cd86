package chat

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"peerchat/blob"
	"peerchat/errors"
	"peerchat/schemas"
	"peerchat/store"

	"github.com/aidarkhanov/nanoid/v2"
)

// AttachmentKind classifies a declared media type into the stored kind
func AttachmentKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return schemas.AttachmentImage
	case strings.HasPrefix(contentType, "video/"):
		return schemas.AttachmentVideo
	default:
		return schemas.AttachmentFile
	}
}

// ChatSessionController owns one active conversation: its history, its
// live message subscription, and sending. At most one subscription is
// alive at a time; Open releases the previous one before acquiring.
type ChatSessionController struct {
	store    store.Store
	uploader blob.Uploader
	userID   string

	mu      sync.Mutex
	active  *schemas.FriendSchema
	chatID  string
	history []schemas.MessageSchema
	present map[string]bool
	sub     *store.Subscription

	// OnAppend fires for every message newly added to the history
	OnAppend func(schemas.MessageSchema)
}

// NewChatSessionController builds the controller for one user
func NewChatSessionController(st store.Store, uploader blob.Uploader, userID string) *ChatSessionController {
	return &ChatSessionController{store: st, uploader: uploader, userID: userID}
}

// Open switches the active conversation: releases the previous
// subscription, loads the full history ascending by created, then
// subscribes to live inserts for this chat id
func (c *ChatSessionController) Open(ctx context.Context, friend schemas.FriendSchema) error {
	c.Close()

	chatID := ChatID(c.userID, friend.UserID)

	rows, err := c.store.Select(ctx, "messages", store.Where(store.Eq("chat_id", chatID)))
	if err != nil {
		return errors.New(errors.Store, "messages", err.Error())
	}

	history := make([]schemas.MessageSchema, 0, len(rows))
	present := make(map[string]bool, len(rows))
	for _, row := range rows {
		message, err := schemas.MessageFromRow(row)
		if err != nil {
			errors.HandleBasicError(err)
			continue
		}
		if present[message.MessageID] {
			continue
		}
		present[message.MessageID] = true
		history = append(history, message)
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Created < history[j].Created
	})

	sub, err := c.store.Subscribe("messages", store.Where(store.Eq("chat_id", chatID)), func(event store.Event) {
		if event.Kind != store.EventInsert {
			return
		}
		message, err := schemas.MessageFromRow(event.Row)
		if err != nil {
			errors.HandleBasicError(err)
			return
		}
		c.appendIfNew(message)
	})
	if err != nil {
		return errors.New(errors.Store, "messages", err.Error())
	}

	friendCopy := friend
	c.mu.Lock()
	c.active = &friendCopy
	c.chatID = chatID
	c.history = history
	c.present = present
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// Close releases the conversation's subscription and clears local state
func (c *ChatSessionController) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.active = nil
	c.chatID = ""
	c.history = nil
	c.present = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Active returns the open conversation's friend, nil when closed
func (c *ChatSessionController) Active() *schemas.FriendSchema {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	friend := *c.active
	return &friend
}

// History returns a copy of the conversation history
func (c *ChatSessionController) History() []schemas.MessageSchema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]schemas.MessageSchema{}, c.history...)
}

// appendIfNew appends unless the id is already present. An inserted
// message also arrives through the subscription after the insert call
// resolved; this is what suppresses the double append.
func (c *ChatSessionController) appendIfNew(message schemas.MessageSchema) {
	c.mu.Lock()
	if c.present == nil || message.ChatID != c.chatID || c.present[message.MessageID] {
		c.mu.Unlock()
		return
	}
	c.present[message.MessageID] = true
	c.history = append(c.history, message)
	onAppend := c.OnAppend
	c.mu.Unlock()

	if onAppend != nil {
		onAppend(message)
	}
}

// Send validates, inserts and appends the canonical record from the
// insert response (not the subscription echo)
func (c *ChatSessionController) Send(ctx context.Context, body string) (schemas.MessageSchema, error) {
	return c.send(ctx, body, "", "")
}

func (c *ChatSessionController) send(ctx context.Context, body string, attachmentURL string, attachmentType string) (schemas.MessageSchema, error) {
	body = strings.TrimSpace(body)
	if body == "" && attachmentURL == "" {
		return schemas.MessageSchema{}, errors.New(errors.Validation, "Message", "empty")
	}

	c.mu.Lock()
	active := c.active
	chatID := c.chatID
	c.mu.Unlock()
	if active == nil {
		return schemas.MessageSchema{}, errors.New(errors.Validation, "Conversation", "none open")
	}

	row, err := c.store.Insert(ctx, "messages", store.Row{
		"chat_id":         chatID,
		"sender_id":       c.userID,
		"receiver_id":     active.UserID,
		"body":            body,
		"attachment_url":  attachmentURL,
		"attachment_type": attachmentType,
	})
	if err != nil {
		return schemas.MessageSchema{}, errors.New(errors.Store, "messages", err.Error())
	}

	message, err := schemas.MessageFromRow(row)
	if err != nil {
		return schemas.MessageSchema{}, errors.New(errors.Store, "messages", err.Error())
	}
	c.appendIfNew(message)
	return message, nil
}

// SendAttachment uploads the blob, classifies it by declared media type
// and sends it as a normal message with the durable URL attached
func (c *ChatSessionController) SendAttachment(ctx context.Context, name string, contentType string, data io.Reader, size int64, caption string) (schemas.MessageSchema, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return schemas.MessageSchema{}, errors.New(errors.Validation, "Conversation", "none open")
	}

	id, err := nanoid.GenerateString(store.VALID_NANOID_CHAR, 21)
	if err != nil {
		return schemas.MessageSchema{}, errors.New(errors.Upload, "attachment", err.Error())
	}
	path := "messages/" + id + filepath.Ext(name)

	url, err := c.uploader.Upload(ctx, path, data, size, contentType)
	if err != nil {
		return schemas.MessageSchema{}, errors.New(errors.Upload, "attachment", err.Error())
	}

	return c.send(ctx, caption, url, AttachmentKind(contentType))
}
