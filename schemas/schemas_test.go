package schemas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisplayNameFallbacks(t *testing.T) {
	require.Equal(t, "Alice", ProfileSchema{UserID: "u1", Username: "alice@mail.com", Nickname: "Alice"}.DisplayName())
	require.Equal(t, "alice", ProfileSchema{UserID: "u1", Username: "alice@mail.com"}.DisplayName())
	require.Equal(t, "u1", ProfileSchema{UserID: "u1", Username: "@mail.com"}.DisplayName())
}

func TestRowMilliRepresentations(t *testing.T) {
	at := time.UnixMilli(1700000000000).UTC()

	require.Equal(t, int64(1700000000000), RowMilli(map[string]interface{}{"created": at}, "created"))
	require.Equal(t, int64(1700000000000), RowMilli(map[string]interface{}{"created": int64(1700000000000)}, "created"))
	require.Equal(t, int64(1700000000000), RowMilli(map[string]interface{}{"created": float64(1700000000000)}, "created"))
	require.Equal(t, int64(1700000000000), RowMilli(map[string]interface{}{"created": json.Number("1700000000000")}, "created"))
	require.Equal(t, int64(0), RowMilli(map[string]interface{}{}, "created"))
	require.Equal(t, int64(0), RowMilli(map[string]interface{}{"created": "soon"}, "created"))
}

func TestMessageFromRowValidates(t *testing.T) {
	_, err := MessageFromRow(map[string]interface{}{"body": "no ids"})
	require.Error(t, err)

	message, err := MessageFromRow(map[string]interface{}{
		"message_id":  "m1",
		"chat_id":     "a_b",
		"sender_id":   "a",
		"receiver_id": "b",
		"body":        "hi",
		"created":     int64(42),
	})
	require.NoError(t, err)
	require.Equal(t, "m1", message.MessageID)
	require.Equal(t, int64(42), message.Created)
}

func TestFriendshipOtherID(t *testing.T) {
	friendship := FriendshipSchema{RequesterID: "a", AddresseeID: "b"}
	require.Equal(t, "b", friendship.OtherID("a"))
	require.Equal(t, "a", friendship.OtherID("b"))
}
