package chat

import (
	"context"
	"testing"
	"time"

	"peerchat/schemas"
	"peerchat/store"

	"github.com/stretchr/testify/require"
)

func messageRow(messageID string, senderID string, receiverID string) store.Row {
	row := store.Row{
		"chat_id":     ChatID(senderID, receiverID),
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"body":        "hey",
		"created":     int64(1000),
	}
	if messageID != "" {
		row["message_id"] = messageID
	}
	return row
}

func TestInboxCountsBySender(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")

	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m1", "bob", "alice")})
	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m2", "bob", "alice")})
	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m3", "carol", "alice")})

	require.Equal(t, 2, watcher.Unread("bob"))
	require.Equal(t, 1, watcher.Unread("carol"))
	require.Equal(t, map[string]int{"bob": 2, "carol": 1}, watcher.Counts())
}

func TestInboxSkipsActiveConversation(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")
	watcher.ActiveFriend = func() string { return "bob" }

	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m1", "bob", "alice")})
	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m2", "carol", "alice")})

	require.Equal(t, 0, watcher.Unread("bob"))
	require.Equal(t, 1, watcher.Unread("carol"))
}

func TestInboxIgnoresNonInserts(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")

	watcher.handle(store.Event{Kind: store.EventUpdate, Table: "messages", Row: messageRow("m1", "bob", "alice")})
	watcher.handle(store.Event{Kind: store.EventDelete, Table: "messages", Row: messageRow("m2", "bob", "alice")})

	require.Equal(t, 0, watcher.Unread("bob"))
}

func TestInboxSkipsMalformedRow(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")

	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: store.Row{"body": "no ids"}})

	require.Empty(t, watcher.Counts())
}

func TestInboxNotifyGate(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")

	var notified []schemas.MessageSchema
	gate := false
	watcher.ShouldNotify = func() bool { return gate }
	watcher.Notify = func(message schemas.MessageSchema) { notified = append(notified, message) }

	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m1", "bob", "alice")})
	require.Empty(t, notified)

	gate = true
	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m2", "bob", "alice")})
	require.Len(t, notified, 1)
	require.Equal(t, "m2", notified[0].MessageID)
}

func TestClearUnread(t *testing.T) {
	watcher := NewInboxWatcher(store.NewMemoryStore(), "alice")

	watcher.handle(store.Event{Kind: store.EventInsert, Table: "messages", Row: messageRow("m1", "bob", "alice")})
	require.Equal(t, 1, watcher.Unread("bob"))

	watcher.ClearUnread("bob")
	require.Equal(t, 0, watcher.Unread("bob"))
	require.Empty(t, watcher.Counts())
}

func TestInboxSubscriptionReceiverOnly(t *testing.T) {
	st := store.NewMemoryStore()
	watcher := NewInboxWatcher(st, "alice")
	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	_, err := st.Insert(context.Background(), "messages", messageRow("", "bob", "alice"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return watcher.Unread("bob") == 1
	}, time.Second, 5*time.Millisecond)

	_, err = st.Insert(context.Background(), "messages", messageRow("", "alice", "bob"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, watcher.Unread("bob"))
	require.Equal(t, 0, watcher.Unread("alice"))
}
