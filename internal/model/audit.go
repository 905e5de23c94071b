package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one mutating operation. Writes are best-effort; a failed
// audit insert never fails the request.
type AuditLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ActorID    uuid.UUID `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	Metadata   JSONMap   `json:"metadata,omitempty" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
