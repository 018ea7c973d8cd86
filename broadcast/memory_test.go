package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendReachesEveryListener(t *testing.T) {
	broker := NewMemoryBroker()
	channel := broker.Channel("typing:a_b")

	var mu sync.Mutex
	var first, second [][]byte
	sub1, err := channel.On("typing", func(payload []byte) {
		mu.Lock()
		first = append(first, payload)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub1.Close()
	sub2, err := channel.On("typing", func(payload []byte) {
		mu.Lock()
		second = append(second, payload)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub2.Close()

	require.NoError(t, channel.Send(context.Background(), "typing", []byte("ping")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 1 && len(second) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestScopesAndEventsAreIsolated(t *testing.T) {
	broker := NewMemoryBroker()

	var mu sync.Mutex
	received := 0
	sub, err := broker.Channel("typing:a_b").On("typing", func([]byte) {
		mu.Lock()
		received++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, broker.Channel("typing:a_c").Send(context.Background(), "typing", []byte("x")))
	require.NoError(t, broker.Channel("typing:a_b").Send(context.Background(), "other", []byte("x")))

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	require.Equal(t, 0, received)
	mu.Unlock()
}

func TestSendWithoutListeners(t *testing.T) {
	broker := NewMemoryBroker()
	require.NoError(t, broker.Channel("typing:a_b").Send(context.Background(), "typing", []byte("x")))
}

func TestCloseStopsDelivery(t *testing.T) {
	broker := NewMemoryBroker()
	channel := broker.Channel("typing:a_b")

	var mu sync.Mutex
	received := 0
	sub, err := channel.On("typing", func([]byte) {
		mu.Lock()
		received++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, channel.Send(context.Background(), "typing", []byte("x")))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received == 1
	}, time.Second, 5*time.Millisecond)

	sub.Close()
	sub.Close()

	require.NoError(t, channel.Send(context.Background(), "typing", []byte("x")))
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	require.Equal(t, 1, received)
	mu.Unlock()
}
