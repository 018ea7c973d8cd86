package store

import (
	"context"
	"sync"
	"time"

	"github.com/aidarkhanov/nanoid/v2"
)

// MemoryStore is an in-process Store with the same push semantics as the
// backed adapters. Tests and local single-process runs use it.
type MemoryStore struct {
	mu       sync.Mutex
	tables   map[string][]Row
	registry *registry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:   make(map[string][]Row),
		registry: newRegistry(),
	}
}

// Select returns copies of every row matching the filter
func (m *MemoryStore) Select(ctx context.Context, table string, filter Filter) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Row
	for _, row := range m.tables[table] {
		if filter.Matches(row) {
			matched = append(matched, row.Clone())
		}
	}
	return matched, nil
}

// Insert stores the row, filling the id and created columns when absent,
// and returns the canonical record
func (m *MemoryStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	stored := row.Clone()

	if _, ok := stored[idColumn(table)]; !ok {
		id, err := nanoid.GenerateString(VALID_NANOID_CHAR, 21)
		if err != nil {
			return nil, err
		}
		stored[idColumn(table)] = id
	}
	if tableTimed[table] {
		if _, ok := stored["created"]; !ok {
			stored["created"] = time.Now().UTC().UnixMilli()
		}
	}

	m.mu.Lock()
	m.tables[table] = append(m.tables[table], stored)
	m.mu.Unlock()

	m.registry.publish(Event{Kind: EventInsert, Table: table, Row: stored.Clone()})
	return stored.Clone(), nil
}

// Update applies changes to every matching row and reports how many
func (m *MemoryStore) Update(ctx context.Context, table string, filter Filter, changes Row) (int, error) {
	var updated []Row

	m.mu.Lock()
	for _, row := range m.tables[table] {
		if filter.Matches(row) {
			for column, value := range changes {
				row[column] = value
			}
			updated = append(updated, row.Clone())
		}
	}
	m.mu.Unlock()

	for _, row := range updated {
		m.registry.publish(Event{Kind: EventUpdate, Table: table, Row: row})
	}
	return len(updated), nil
}

// Upsert inserts the row or, if a row with the same key column exists,
// overwrites its columns
func (m *MemoryStore) Upsert(ctx context.Context, table string, keyColumn string, row Row) (Row, error) {
	key, ok := row[keyColumn]
	if ok {
		count, err := m.Update(ctx, table, Where(Eq(keyColumn, key)), row)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			rows, err := m.Select(ctx, table, Where(Eq(keyColumn, key)))
			if err != nil || len(rows) == 0 {
				return nil, err
			}
			return rows[0], nil
		}
	}
	return m.Insert(ctx, table, row)
}

// Delete removes every matching row; removing nothing is a no-op
func (m *MemoryStore) Delete(ctx context.Context, table string, filter Filter) (int, error) {
	var removed []Row

	m.mu.Lock()
	kept := m.tables[table][:0]
	for _, row := range m.tables[table] {
		if filter.Matches(row) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	m.mu.Unlock()

	for _, row := range removed {
		m.registry.publish(Event{Kind: EventDelete, Table: table, Row: row.Clone()})
	}
	return len(removed), nil
}

// Subscribe delivers every matching change until the subscription closes
func (m *MemoryStore) Subscribe(table string, filter Filter, handler Handler) (*Subscription, error) {
	return m.registry.add(table, filter, handler)
}
