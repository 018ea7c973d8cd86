package broadcast

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisBroker backs ephemeral channels with redis pub/sub; signals reach
// only currently-subscribed listeners and are never stored
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker wraps a redis client
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

// Channel returns the named scope
func (b *RedisBroker) Channel(scope string) Channel {
	return &redisChannel{client: b.client, scope: scope}
}

type redisChannel struct {
	client *redis.Client
	scope  string
}

func (c *redisChannel) key(event string) string {
	return "broadcast:" + c.scope + ":" + event
}

// Send publishes fire-and-forget
func (c *redisChannel) Send(ctx context.Context, event string, payload []byte) error {
	return c.client.Publish(ctx, c.key(event), payload).Err()
}

// On subscribes until Close
func (c *redisChannel) On(event string, handler Handler) (*Subscription, error) {
	pubsub := c.client.Subscribe(context.Background(), c.key(event))
	if _, err := pubsub.Receive(context.Background()); err != nil {
		pubsub.Close()
		return nil, err
	}

	go func() {
		for message := range pubsub.Channel() {
			handler([]byte(message.Payload))
		}
	}()

	return &Subscription{
		closeFn: func() {
			pubsub.Close()
		},
	}, nil
}
