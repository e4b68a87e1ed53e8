package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"admission-api/core/entity"

	"github.com/google/uuid"
)

type Notification struct {
	entity.BaseEntity
	UserID  uuid.UUID `db:"user_id" json:"userId"`
	Title   string    `db:"title" json:"title"`
	Message string    `db:"message" json:"message"`
	Type    string    `db:"type" json:"type"`
	Data    JSONB     `db:"data" json:"data"`
	IsRead  bool      `db:"is_read" json:"isRead"`
}

// JSONB maps the notifications.data column. It carries per-type context such
// as the appointment or ticket id the notification points at.
type JSONB map[string]any

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, j)
}
