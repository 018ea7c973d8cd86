package store

import (
	"sync"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/segmentio/fasthash/fnv1a"
)

const CONCURRENCY = 32
const VALID_NANOID_CHAR = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const EVENT_BUFFER = 64

type subscriber struct {
	table  string
	filter Filter
	events chan Event
}

type concSubTable struct {
	table map[string]*subscriber
	sync.RWMutex
}

type concSubTableShards []*concSubTable

func (shards concSubTableShards) getShard(id string) *concSubTable {
	return shards[fnv1a.HashString32(id)%CONCURRENCY]
}

// registry fans change events out to subscriptions, sharded to keep
// publish contention low
type registry struct {
	shards concSubTableShards
}

func newRegistry() *registry {
	shards := make(concSubTableShards, CONCURRENCY)
	for i := range shards {
		shards[i] = &concSubTable{table: make(map[string]*subscriber)}
	}
	return &registry{shards: shards}
}

// add registers a subscription; the handler drains its own FIFO channel
func (r *registry) add(table string, filter Filter, handler Handler) (*Subscription, error) {
	sub := &subscriber{
		table:  table,
		filter: filter,
		events: make(chan Event, EVENT_BUFFER),
	}

	var id string
	for {
		generated, err := nanoid.GenerateString(VALID_NANOID_CHAR, 10)
		if err != nil {
			return nil, err
		}

		shard := r.shards.getShard(generated)
		shard.Lock()
		if _, exists := shard.table[generated]; !exists {
			shard.table[generated] = sub
			shard.Unlock()
			id = generated
			break
		}
		shard.Unlock()
	}

	go func() {
		for event := range sub.events {
			handler(event)
		}
	}()

	subID := id
	return &Subscription{
		id: subID,
		closeFn: func() {
			r.remove(subID)
		},
	}, nil
}

func (r *registry) remove(id string) {
	shard := r.shards.getShard(id)

	shard.Lock()
	sub := shard.table[id]
	delete(shard.table, id)
	shard.Unlock()

	if sub != nil {
		close(sub.events)
	}
}

// publish delivers the event to every matching subscription
func (r *registry) publish(event Event) {
	for _, shard := range r.shards {
		shard.RLock()
		for _, sub := range shard.table {
			if sub.table == event.Table && sub.filter.Matches(event.Row) {
				sub.events <- event
			}
		}
		shard.RUnlock()
	}
}
