package chat

import (
	"context"
	"sync"

	"peerchat/errors"
	"peerchat/schemas"
	"peerchat/store"
)

// InboxWatcher listens to every message addressed to the user for the
// whole session, independent of which conversation is open. It keeps the
// per-sender unread counters and fires the notification cue.
type InboxWatcher struct {
	store  store.Store
	userID string

	// ActiveFriend reports the open conversation's other participant,
	// empty when no conversation is open
	ActiveFriend func() string
	// ShouldNotify gates the cue (the app not being foregrounded, say)
	ShouldNotify func() bool
	// Notify is the one-shot cue; best effort, never retried
	Notify func(schemas.MessageSchema)

	mu     sync.Mutex
	unread map[string]int
	sub    *store.Subscription
}

// NewInboxWatcher builds the watcher for one user
func NewInboxWatcher(st store.Store, userID string) *InboxWatcher {
	return &InboxWatcher{
		store:  st,
		userID: userID,
		unread: make(map[string]int),
	}
}

// Start acquires the single receiver-side subscription
func (w *InboxWatcher) Start(ctx context.Context) error {
	sub, err := w.store.Subscribe("messages",
		store.Where(store.Eq("receiver_id", w.userID)),
		w.handle,
	)
	if err != nil {
		return errors.New(errors.Store, "messages", err.Error())
	}

	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()
	return nil
}

// Stop releases the subscription
func (w *InboxWatcher) Stop() {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (w *InboxWatcher) handle(event store.Event) {
	if event.Kind != store.EventInsert {
		return
	}
	message, err := schemas.MessageFromRow(event.Row)
	if err != nil {
		errors.HandleBasicError(err)
		return
	}

	active := ""
	if w.ActiveFriend != nil {
		active = w.ActiveFriend()
	}
	if active != message.SenderID {
		w.mu.Lock()
		w.unread[message.SenderID]++
		w.mu.Unlock()
	}

	if w.ShouldNotify != nil && w.Notify != nil && w.ShouldNotify() {
		w.Notify(message)
	}
}

// Unread returns the counter for one friend
func (w *InboxWatcher) Unread(friendID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unread[friendID]
}

// Counts returns a copy of every non-zero counter
func (w *InboxWatcher) Counts() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	counts := make(map[string]int, len(w.unread))
	for friendID, count := range w.unread {
		counts[friendID] = count
	}
	return counts
}

// ClearUnread zeroes the counter when the friend's conversation opens
func (w *InboxWatcher) ClearUnread(friendID string) {
	w.mu.Lock()
	delete(w.unread, friendID)
	w.mu.Unlock()
}
