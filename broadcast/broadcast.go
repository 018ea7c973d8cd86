// Package broadcast carries ephemeral, non-persisted signals (typing
// indicators) between the participants of one conversation scope. No
// delivery guarantee, no backlog on subscribe.
package broadcast

import (
	"context"
	"sync"
)

// Handler receives raw signal payloads
type Handler func(payload []byte)

// Channel is one named ephemeral scope
type Channel interface {
	Send(ctx context.Context, event string, payload []byte) error
	On(event string, handler Handler) (*Subscription, error)
}

// Broker hands out channels by scope name
type Broker interface {
	Channel(scope string) Channel
}

// Subscription is a live listener; Close releases it and is safe to call
// more than once
type Subscription struct {
	once    sync.Once
	closeFn func()
}

// Close releases the subscription
func (s *Subscription) Close() {
	s.once.Do(s.closeFn)
}
