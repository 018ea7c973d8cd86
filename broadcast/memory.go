package broadcast

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker for tests and single-process runs
type MemoryBroker struct {
	mu        sync.RWMutex
	listeners map[string][]*memoryListener
}

type memoryListener struct {
	payloads chan []byte
}

// NewMemoryBroker creates an empty broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{listeners: make(map[string][]*memoryListener)}
}

// Channel returns the named scope
func (b *MemoryBroker) Channel(scope string) Channel {
	return &memoryChannel{broker: b, scope: scope}
}

type memoryChannel struct {
	broker *MemoryBroker
	scope  string
}

func (c *memoryChannel) key(event string) string {
	return c.scope + ":" + event
}

// Send delivers to every current listener; nobody listening is fine
func (c *memoryChannel) Send(ctx context.Context, event string, payload []byte) error {
	c.broker.mu.RLock()
	for _, listener := range c.broker.listeners[c.key(event)] {
		listener.payloads <- payload
	}
	c.broker.mu.RUnlock()
	return nil
}

// On subscribes until Close
func (c *memoryChannel) On(event string, handler Handler) (*Subscription, error) {
	listener := &memoryListener{payloads: make(chan []byte, 16)}
	key := c.key(event)

	c.broker.mu.Lock()
	c.broker.listeners[key] = append(c.broker.listeners[key], listener)
	c.broker.mu.Unlock()

	go func() {
		for payload := range listener.payloads {
			handler(payload)
		}
	}()

	return &Subscription{
		closeFn: func() {
			c.broker.mu.Lock()
			kept := c.broker.listeners[key][:0]
			for _, candidate := range c.broker.listeners[key] {
				if candidate != listener {
					kept = append(kept, candidate)
				}
			}
			c.broker.listeners[key] = kept
			c.broker.mu.Unlock()
			close(listener.payloads)
		},
	}, nil
}
