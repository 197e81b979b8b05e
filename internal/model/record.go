package model

import (
	"time"

	"github.com/google/uuid"
)

// Record is a committed catalog record as stored by the record layer.
// The entity-specific fields are opaque to everything except validation;
// the image reference is the one distinguished field.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	Entity    EntityType     `json:"entity_type"`
	Image     string         `json:"image"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Payload is the finalized input to a record create or update: the
// entity-specific fields plus the image reference that the committed
// record must point at. By the time a Payload reaches the record layer
// the image reference is final (a stored object or a placeholder).
type Payload struct {
	Image  string         `json:"image"`
	Fields map[string]any `json:"fields"`
}
