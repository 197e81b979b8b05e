package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType identifies a catalog audit event published to the queue.
type AuditEventType string

const (
	AuditUpsertCommitted AuditEventType = "upsert_committed"
	AuditRecordDeleted   AuditEventType = "record_deleted"
	AuditBlobOrphaned    AuditEventType = "blob_orphaned"
)

// AuditEvent describes one catalog mutation or cleanup failure.
// BlobOrphaned events carry the reference of an image that could not be
// removed from storage, with enough context for manual cleanup.
type AuditEvent struct {
	ID       uuid.UUID      `json:"id"`
	Type     AuditEventType `json:"type"`
	Entity   EntityType     `json:"entity_type"`
	RecordID uuid.UUID      `json:"record_id,omitempty"`
	Ref      string         `json:"ref,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	At       time.Time      `json:"at"`
}

// OrphanedImage is a stored image that no committed record references,
// persisted for manual cleanup.
type OrphanedImage struct {
	ID        uuid.UUID  `json:"id"`
	Entity    EntityType `json:"entity_type"`
	RecordID  uuid.UUID  `json:"record_id,omitempty"`
	Ref       string     `json:"ref"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}
