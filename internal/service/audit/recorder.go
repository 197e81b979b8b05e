package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/model"
)

// producer publishes audit events to the queue.
type producer interface {
	Produce(ctx context.Context, ev model.AuditEvent) error
}

// Recorder turns catalog mutations into audit events. Publishing is
// best effort: a produce failure is logged and swallowed so the audit
// trail can never change the outcome of the operation it observes.
type Recorder struct {
	producer producer
}

// NewRecorder creates a Recorder over the given producer.
func NewRecorder(p producer) *Recorder {
	return &Recorder{producer: p}
}

// UpsertCommitted publishes an event for a committed create or update.
func (r *Recorder) UpsertCommitted(ctx context.Context, rec model.Record) {
	r.publish(ctx, model.AuditEvent{
		ID:       uuid.New(),
		Type:     model.AuditUpsertCommitted,
		Entity:   rec.Entity,
		RecordID: rec.ID,
		Ref:      rec.Image,
		At:       time.Now().UTC(),
	})
}

// RecordDeleted publishes an event for a deleted record. The image
// reference rides along so retained images stay traceable.
func (r *Recorder) RecordDeleted(ctx context.Context, rec model.Record) {
	r.publish(ctx, model.AuditEvent{
		ID:       uuid.New(),
		Type:     model.AuditRecordDeleted,
		Entity:   rec.Entity,
		RecordID: rec.ID,
		Ref:      rec.Image,
		At:       time.Now().UTC(),
	})
}

// BlobOrphaned publishes an event for an image that could not be
// removed, so it can be picked up for manual cleanup.
func (r *Recorder) BlobOrphaned(ctx context.Context, entity model.EntityType, recordID uuid.UUID, ref string, cause error) {
	r.publish(ctx, model.AuditEvent{
		ID:       uuid.New(),
		Type:     model.AuditBlobOrphaned,
		Entity:   entity,
		RecordID: recordID,
		Ref:      ref,
		Reason:   cause.Error(),
		At:       time.Now().UTC(),
	})
}

func (r *Recorder) publish(ctx context.Context, ev model.AuditEvent) {
	if err := r.producer.Produce(ctx, ev); err != nil {
		zlog.Logger.Err(err).
			Str("event_type", string(ev.Type)).
			Str("entity_type", string(ev.Entity)).
			Msg("failed to publish audit event")
	}
}
