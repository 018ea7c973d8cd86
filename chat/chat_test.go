package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatIDOrdersParticipants(t *testing.T) {
	require.Equal(t, "u1_u2", ChatID("u1", "u2"))
	require.Equal(t, "u1_u2", ChatID("u2", "u1"))
	require.Equal(t, ChatID("alice", "bob"), ChatID("bob", "alice"))
}
