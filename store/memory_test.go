package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInsertFillsIDAndCreated(t *testing.T) {
	st := NewMemoryStore()

	row, err := st.Insert(context.Background(), "messages", Row{
		"chat_id":     "a_b",
		"sender_id":   "a",
		"receiver_id": "b",
		"body":        "hi",
	})
	require.NoError(t, err)
	require.Len(t, row["message_id"].(string), 21)
	require.NotZero(t, row["created"].(int64))

	profile, err := st.Insert(context.Background(), "profiles", Row{"username": "a@mail.com"})
	require.NoError(t, err)
	require.NotEmpty(t, profile["user_id"])
	_, timed := profile["created"]
	require.False(t, timed)
}

func TestInsertKeepsProvidedID(t *testing.T) {
	st := NewMemoryStore()

	row, err := st.Insert(context.Background(), "profiles", Row{"user_id": "alice"})
	require.NoError(t, err)
	require.Equal(t, "alice", row["user_id"])
}

func TestSelectReturnsCopies(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Insert(context.Background(), "profiles", Row{"user_id": "alice", "nickname": "Alice"})
	require.NoError(t, err)

	rows, err := st.Select(context.Background(), "profiles", Where(Eq("user_id", "alice")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rows[0]["nickname"] = "mutated"

	again, err := st.Select(context.Background(), "profiles", Where(Eq("user_id", "alice")))
	require.NoError(t, err)
	require.Equal(t, "Alice", again[0]["nickname"])
}

func TestUpdateReportsCount(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Insert(context.Background(), "friendships", Row{"requester_id": "a", "addressee_id": "b", "status": "pending"})
	require.NoError(t, err)
	_, err = st.Insert(context.Background(), "friendships", Row{"requester_id": "a", "addressee_id": "c", "status": "pending"})
	require.NoError(t, err)

	count, err := st.Update(context.Background(), "friendships", Where(Eq("requester_id", "a")), Row{"status": "accepted"})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = st.Update(context.Background(), "friendships", Where(Eq("requester_id", "z")), Row{"status": "accepted"})
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestUpsert(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.Upsert(context.Background(), "profiles", "user_id", Row{"user_id": "alice", "nickname": "Alice"})
	require.NoError(t, err)

	row, err := st.Upsert(context.Background(), "profiles", "user_id", Row{"user_id": "alice", "nickname": "Al"})
	require.NoError(t, err)
	require.Equal(t, "Al", row["nickname"])

	rows, err := st.Select(context.Background(), "profiles", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	st := NewMemoryStore()

	count, err := st.Delete(context.Background(), "friendships", Where(Eq("relation_id", "gone")))
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	st := NewMemoryStore()

	var mu sync.Mutex
	var seen []string
	sub, err := st.Subscribe("messages", Where(Eq("receiver_id", "b")), func(event Event) {
		mu.Lock()
		seen = append(seen, event.Row["body"].(string))
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Close()

	for _, body := range []string{"one", "two", "three"} {
		_, err = st.Insert(context.Background(), "messages", Row{
			"chat_id": "a_b", "sender_id": "a", "receiver_id": "b", "body": body,
		})
		require.NoError(t, err)
	}
	_, err = st.Insert(context.Background(), "messages", Row{
		"chat_id": "a_c", "sender_id": "a", "receiver_id": "c", "body": "elsewhere",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"one", "two", "three"}, seen)
	mu.Unlock()
}

func TestSubscribeEventKinds(t *testing.T) {
	st := NewMemoryStore()

	var mu sync.Mutex
	var kinds []EventKind
	sub, err := st.Subscribe("friendships", nil, func(event Event) {
		mu.Lock()
		kinds = append(kinds, event.Kind)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Close()

	_, err = st.Insert(context.Background(), "friendships", Row{"requester_id": "a", "addressee_id": "b", "status": "pending"})
	require.NoError(t, err)
	_, err = st.Update(context.Background(), "friendships", Where(Eq("requester_id", "a")), Row{"status": "accepted"})
	require.NoError(t, err)
	_, err = st.Delete(context.Background(), "friendships", Where(Eq("requester_id", "a")))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) == 3
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	require.Equal(t, []EventKind{EventInsert, EventUpdate, EventDelete}, kinds)
	mu.Unlock()
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	st := NewMemoryStore()

	var mu sync.Mutex
	delivered := 0
	sub, err := st.Subscribe("profiles", nil, func(Event) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})
	require.NoError(t, err)

	_, err = st.Insert(context.Background(), "profiles", Row{"user_id": "alice"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 1
	}, time.Second, 5*time.Millisecond)

	sub.Close()
	sub.Close()

	_, err = st.Insert(context.Background(), "profiles", Row{"user_id": "bob"})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	require.Equal(t, 1, delivered)
	mu.Unlock()
}
