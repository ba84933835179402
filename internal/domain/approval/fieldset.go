package approval

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FieldSet holds a snapshot of named field values. It is stored as JSON, so
// numeric values read back from the database arrive as float64 and need the
// typed accessors below.
type FieldSet map[string]any

// Value implements driver.Valuer for database serialization
func (f FieldSet) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for database deserialization
func (f *FieldSet) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FieldSet", value)
	}

	return json.Unmarshal(bytes, f)
}

// Has returns true if the field is present in the set
func (f FieldSet) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// Int64 reads an integer field. JSON round trips store numbers as float64.
func (f FieldSet) Int64(field string) (int64, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// String reads a string field
func (f FieldSet) String(field string) (string, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Time reads a time field. JSON round trips store times as RFC 3339 strings.
func (f FieldSet) Time(field string) (time.Time, bool) {
	v, ok := f[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
