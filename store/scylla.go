package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	jsoniter "github.com/json-iterator/go"
)

// tableKeys names the primary key columns per table; updates and deletes
// resolve matching rows first and then address them by primary key
var tableKeys = map[string][]string{
	"profiles":    {"user_id"},
	"friendships": {"relation_id"},
	"messages":    {"chat_id", "created"},
}

// ScyllaStore persists rows in ScyllaDB and fans change events out over
// redis pub/sub so every client process sees pushes, not just the writer
type ScyllaStore struct {
	session *gocql.Session
	redis   *redis.Client
}

// NewScyllaStore wraps an open cql session and redis client
func NewScyllaStore(session *gocql.Session, redisClient *redis.Client) *ScyllaStore {
	return &ScyllaStore{session: session, redis: redisClient}
}

func changeChannel(table string) string {
	return "changes:" + table
}

// normalizeRow converts cql values into the wire representation shared
// with the in-memory store (timestamps as ms since epoch)
func normalizeRow(row Row) Row {
	normalized := row.Clone()
	for column, value := range normalized {
		if stamp, ok := value.(time.Time); ok {
			normalized[column] = stamp.UnixMilli()
		}
	}
	return normalized
}

func clauseCQL(table string, clause Clause) (string, []interface{}) {
	query := "SELECT * FROM " + table
	var args []interface{}
	var parts []string
	for _, condition := range clause {
		if len(condition.Values) == 1 {
			parts = append(parts, condition.Column+" = ?")
			args = append(args, condition.Values[0])
		} else {
			parts = append(parts, condition.Column+" IN ?")
			args = append(args, condition.Values)
		}
	}
	if len(parts) > 0 {
		query += " WHERE " + strings.Join(parts, " AND ")
	}
	return query + " ALLOW FILTERING;", args
}

// selectRaw runs one query per clause and merges results, deduplicated by
// the table's id column
func (s *ScyllaStore) selectRaw(ctx context.Context, table string, filter Filter) ([]Row, error) {
	clauses := []Clause(filter)
	if len(clauses) == 0 {
		clauses = []Clause{nil}
	}

	var merged []Row
	seen := make(map[string]bool)

	for _, clause := range clauses {
		query, args := clauseCQL(table, clause)
		iter := s.session.Query(query, args...).WithContext(ctx).Iter()
		for {
			row := make(map[string]interface{})
			if !iter.MapScan(row) {
				break
			}
			if id, ok := row[idColumn(table)].(string); ok {
				if seen[id] {
					continue
				}
				seen[id] = true
			}
			merged = append(merged, Row(row))
		}
		if err := iter.Close(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Select returns every row matching the filter
func (s *ScyllaStore) Select(ctx context.Context, table string, filter Filter) ([]Row, error) {
	raw, err := s.selectRaw(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raw))
	for _, row := range raw {
		rows = append(rows, normalizeRow(row))
	}
	return rows, nil
}

func (s *ScyllaStore) insertRow(ctx context.Context, table string, row Row) (Row, error) {
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
			stored["created"] = time.Now().UTC()
		}
	}

	columns := make([]string, 0, len(stored))
	for column := range stored {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	args := make([]interface{}, 0, len(columns))
	marks := make([]string, 0, len(columns))
	for _, column := range columns {
		args = append(args, stored[column])
		marks = append(marks, "?")
	}

	err := s.session.Query(
		"INSERT INTO "+table+" ("+strings.Join(columns, ", ")+") VALUES ("+strings.Join(marks, ", ")+");",
		args...,
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Insert stores the row, filling id and created when absent, publishes the
// change and returns the canonical record
func (s *ScyllaStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	stored, err := s.insertRow(ctx, table, row)
	if err != nil {
		return nil, err
	}
	canonical := normalizeRow(stored)
	s.publish(ctx, Event{Kind: EventInsert, Table: table, Row: canonical})
	return canonical, nil
}

func keyCQL(table string) (string, []string) {
	keys := tableKeys[table]
	if len(keys) == 0 {
		keys = []string{idColumn(table)}
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" = ?")
	}
	return strings.Join(parts, " AND "), keys
}

// Update applies changes to every matching row and reports how many
func (s *ScyllaStore) Update(ctx context.Context, table string, filter Filter, changes Row) (int, error) {
	matched, err := s.selectRaw(ctx, table, filter)
	if err != nil {
		return 0, err
	}

	where, keys := keyCQL(table)

	var columns []string
	for column := range changes {
		skip := false
		for _, key := range keys {
			if column == key {
				skip = true
			}
		}
		if !skip {
			columns = append(columns, column)
		}
	}
	sort.Strings(columns)

	for _, row := range matched {
		if len(columns) == 0 {
			continue
		}
		sets := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns)+len(keys))
		for _, column := range columns {
			sets = append(sets, column+" = ?")
			args = append(args, changes[column])
		}
		for _, key := range keys {
			args = append(args, row[key])
		}

		err = s.session.Query(
			"UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE "+where+";",
			args...,
		).WithContext(ctx).Exec()
		if err != nil {
			return 0, err
		}

		merged := row.Clone()
		for column, value := range changes {
			merged[column] = value
		}
		s.publish(ctx, Event{Kind: EventUpdate, Table: table, Row: normalizeRow(merged)})
	}
	return len(matched), nil
}

// Upsert inserts the row or overwrites the columns of the row sharing the
// key column value
func (s *ScyllaStore) Upsert(ctx context.Context, table string, keyColumn string, row Row) (Row, error) {
	key, ok := row[keyColumn]
	if ok {
		existing, err := s.selectRaw(ctx, table, Where(Eq(keyColumn, key)))
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			if _, err = s.Update(ctx, table, Where(Eq(keyColumn, key)), row); err != nil {
				return nil, err
			}
			merged := existing[0].Clone()
			for column, value := range row {
				merged[column] = value
			}
			return normalizeRow(merged), nil
		}
	}
	return s.Insert(ctx, table, row)
}

// Delete removes every matching row; removing nothing is a no-op
func (s *ScyllaStore) Delete(ctx context.Context, table string, filter Filter) (int, error) {
	matched, err := s.selectRaw(ctx, table, filter)
	if err != nil {
		return 0, err
	}

	where, keys := keyCQL(table)

	for _, row := range matched {
		args := make([]interface{}, 0, len(keys))
		for _, key := range keys {
			args = append(args, row[key])
		}
		err = s.session.Query("DELETE FROM "+table+" WHERE "+where+";", args...).WithContext(ctx).Exec()
		if err != nil {
			return 0, err
		}
		s.publish(ctx, Event{Kind: EventDelete, Table: table, Row: normalizeRow(row)})
	}
	return len(matched), nil
}

func (s *ScyllaStore) publish(ctx context.Context, event Event) {
	payload, err := jsoniter.Marshal(event)
	if err != nil {
		return
	}
	s.redis.Publish(ctx, changeChannel(event.Table), payload)
}

// Subscribe consumes the table's redis change channel and filters locally
func (s *ScyllaStore) Subscribe(table string, filter Filter, handler Handler) (*Subscription, error) {
	pubsub := s.redis.Subscribe(context.Background(), changeChannel(table))
	if _, err := pubsub.Receive(context.Background()); err != nil {
		pubsub.Close()
		return nil, err
	}

	go func() {
		for message := range pubsub.Channel() {
			var event Event
			if err := jsoniter.Unmarshal([]byte(message.Payload), &event); err != nil {
				continue
			}
			if filter.Matches(event.Row) {
				handler(event)
			}
		}
	}()

	return &Subscription{
		closeFn: func() {
			pubsub.Close()
		},
	}, nil
}
