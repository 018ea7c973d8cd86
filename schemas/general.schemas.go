package schemas

import (
	"encoding/json"
	"time"
)

// ErrorResponse struct
type ErrorResponse struct {
	Error       bool
	Problem     string
	Description string
}

// Message struct
type Message struct {
	Message string
}

// RowString reads a string column, empty when absent or mistyped
func RowString(row map[string]interface{}, column string) string {
	if value, ok := row[column].(string); ok {
		return value
	}
	return ""
}

// RowMilli reads a timestamp column as milliseconds since epoch.
// Store adapters hand back time.Time, in-memory rows int64, and rows
// decoded from pub/sub JSON float64 or json.Number.
func RowMilli(row map[string]interface{}, column string) int64 {
	switch value := row[column].(type) {
	case time.Time:
		return value.UnixMilli()
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	case json.Number:
		milli, err := value.Int64()
		if err != nil {
			return 0
		}
		return milli
	default:
		return 0
	}
}
