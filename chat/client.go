package chat

import (
	"context"
	"io"
	"path/filepath"
	"sync"

	"peerchat/blob"
	"peerchat/broadcast"
	"peerchat/errors"
	"peerchat/schemas"
	"peerchat/store"

	"github.com/aidarkhanov/nanoid/v2"
)

// Client wires the per-session pieces together: one friendship manager and
// inbox watcher for the session lifetime, and at most one open
// conversation (session controller + presence notifier) at a time. Every
// subscribe has a matching release on every transition away from its
// scope.
type Client struct {
	store    store.Store
	broker   broadcast.Broker
	uploader blob.Uploader

	Friends *FriendshipManager
	Inbox   *InboxWatcher
	Session *ChatSessionController

	// OnTyping fires when the open conversation's typing indicator flips
	OnTyping func(typing bool)

	mu       sync.Mutex
	profile  schemas.ProfileSchema
	activeID string
	presence *PresenceNotifier
}

// NewClient builds the session for one authenticated user
func NewClient(profile schemas.ProfileSchema, st store.Store, broker broadcast.Broker, uploader blob.Uploader) *Client {
	client := &Client{
		store:    st,
		broker:   broker,
		uploader: uploader,
		profile:  profile,
	}
	client.Friends = NewFriendshipManager(st, profile.UserID)
	client.Inbox = NewInboxWatcher(st, profile.UserID)
	client.Session = NewChatSessionController(st, uploader, profile.UserID)
	client.Inbox.ActiveFriend = client.activeFriend
	return client
}

// Profile returns the logged-in user's profile
func (c *Client) Profile() schemas.ProfileSchema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Client) activeFriend() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Start begins the session-lifetime listeners
func (c *Client) Start(ctx context.Context) error {
	if err := c.Friends.Start(ctx); err != nil {
		return err
	}
	if err := c.Inbox.Start(ctx); err != nil {
		c.Friends.Stop()
		return err
	}
	return nil
}

// OpenConversation switches the open conversation to the given friend:
// the previous scope's subscriptions are released first, the friend's
// unread counter resets, and fresh message/typing subscriptions are
// acquired
func (c *Client) OpenConversation(ctx context.Context, friend schemas.FriendSchema) error {
	c.stopPresence()

	if err := c.Session.Open(ctx, friend); err != nil {
		c.mu.Lock()
		c.activeID = ""
		c.mu.Unlock()
		return err
	}

	c.Inbox.ClearUnread(friend.UserID)

	userID := c.Profile().UserID
	presence := NewPresenceNotifier(
		c.broker.Channel("typing:"+ChatID(userID, friend.UserID)),
		userID,
		friend.UserID,
	)
	presence.OnChange = func(typing bool) {
		if c.OnTyping != nil {
			c.OnTyping(typing)
		}
	}
	if err := presence.Start(); err != nil {
		c.Session.Close()
		c.mu.Lock()
		c.activeID = ""
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.activeID = friend.UserID
	c.presence = presence
	c.mu.Unlock()
	return nil
}

// CloseConversation releases the open conversation's subscriptions
func (c *Client) CloseConversation() {
	c.stopPresence()
	c.Session.Close()

	c.mu.Lock()
	c.activeID = ""
	c.mu.Unlock()
}

func (c *Client) stopPresence() {
	c.mu.Lock()
	presence := c.presence
	c.presence = nil
	c.mu.Unlock()

	if presence != nil {
		presence.Stop()
	}
}

// NotifyTyping broadcasts the local typing signal for the open
// conversation; a no-op when none is open
func (c *Client) NotifyTyping(ctx context.Context) {
	c.mu.Lock()
	presence := c.presence
	c.mu.Unlock()

	if presence != nil {
		presence.NotifyTyping(ctx)
	}
}

// FriendTyping reports the open conversation's typing indicator
func (c *Client) FriendTyping() bool {
	c.mu.Lock()
	presence := c.presence
	c.mu.Unlock()

	return presence != nil && presence.Typing()
}

// SetAvatar uploads the picture and updates the profile row
func (c *Client) SetAvatar(ctx context.Context, name string, contentType string, data io.Reader, size int64) (string, error) {
	id, err := nanoid.GenerateString(store.VALID_NANOID_CHAR, 21)
	if err != nil {
		return "", errors.New(errors.Upload, "avatar", err.Error())
	}
	path := "avatars/" + id + filepath.Ext(name)

	url, err := c.uploader.Upload(ctx, path, data, size, contentType)
	if err != nil {
		return "", errors.New(errors.Upload, "avatar", err.Error())
	}

	userID := c.Profile().UserID
	_, err = c.store.Update(ctx, "profiles",
		store.Where(store.Eq("user_id", userID)),
		store.Row{"avatar_url": url},
	)
	if err != nil {
		return "", errors.New(errors.Store, "profiles", err.Error())
	}

	c.mu.Lock()
	c.profile.AvatarURL = url
	c.mu.Unlock()
	return url, nil
}

// Close ends the session and releases every live subscription
func (c *Client) Close() {
	c.CloseConversation()
	c.Friends.Stop()
	c.Inbox.Stop()
}
