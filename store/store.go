// Package store defines the relational-store-with-push contract the chat
// core runs against, plus the two adapters that satisfy it: an in-process
// MemoryStore and a ScyllaDB/redis ScyllaStore.
package store

import (
	"context"
	"sync"
)

// Row is one loosely-typed table row; schemas map rows into validated
// structs immediately after retrieval
type Row map[string]interface{}

// EventKind discriminates change notifications
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is one change notification delivered to subscribers
type Event struct {
	Kind  EventKind
	Table string
	Row   Row
}

// Handler receives matching events in FIFO order for its subscription
type Handler func(Event)

// Store is the relational store with push notifications
type Store interface {
	Select(ctx context.Context, table string, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, filter Filter, changes Row) (int, error)
	Upsert(ctx context.Context, table string, keyColumn string, row Row) (Row, error)
	Delete(ctx context.Context, table string, filter Filter) (int, error)
	Subscribe(table string, filter Filter, handler Handler) (*Subscription, error)
}

// Subscription is a live push subscription; Close releases it and is safe
// to call more than once
type Subscription struct {
	id      string
	once    sync.Once
	closeFn func()
}

// Close releases the subscription
func (s *Subscription) Close() {
	s.once.Do(s.closeFn)
}

// tableIDs names the generated id column per table
var tableIDs = map[string]string{
	"profiles":    "user_id",
	"friendships": "relation_id",
	"messages":    "message_id",
}

// tableTimed marks tables that carry a created timestamp
var tableTimed = map[string]bool{
	"messages": true,
}

func idColumn(table string) string {
	if column, ok := tableIDs[table]; ok {
		return column
	}
	return "id"
}

// Clone copies a row so callers never alias store-owned state
func (r Row) Clone() Row {
	copied := make(Row, len(r))
	for column, value := range r {
		copied[column] = value
	}
	return copied
}
