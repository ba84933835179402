package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONMap stores arbitrary detail as JSON
type JSONMap map[string]any

// Value implements driver.Valuer
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	return json.Unmarshal(bytes, j)
}

// AuditEntryModel is the write-once persistence model for the audit trail
type AuditEntryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Actor      uuid.UUID `gorm:"type:uuid;index"`
	Action     string    `gorm:"size:100;not null;index"`
	EntityType string    `gorm:"size:50;not null"`
	EntityID   uuid.UUID `gorm:"type:uuid;index"`
	Detail     JSONMap   `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}
