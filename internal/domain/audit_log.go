package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AuditCreate         = "CREATE"
	AuditUpdate         = "UPDATE"
	AuditRollbackCreate = "ROLLBACK_CREATE"
	AuditRollbackUpdate = "ROLLBACK_UPDATE"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type CreateAuditLogInput struct {
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValue   interface{}
	NewValue   interface{}
}
