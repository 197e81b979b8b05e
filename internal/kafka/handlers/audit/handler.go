package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/model"
)

// orphanRepo persists orphaned image references for manual cleanup.
type orphanRepo interface {
	Save(ctx context.Context, o model.OrphanedImage) (uuid.UUID, error)
}

// Handler consumes audit events from the queue. Orphaned-blob events
// are persisted so operators can clean the storage up manually; other
// event types only hit the log.
type Handler struct {
	orphans orphanRepo
}

// NewHandler creates a new Handler with the given orphan repository.
func NewHandler(orphans orphanRepo) *Handler {
	return &Handler{orphans: orphans}
}

func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var ev model.AuditEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("unmarshal audit event: %w", err)
	}

	switch ev.Type {
	case model.AuditBlobOrphaned:
		id, err := h.orphans.Save(ctx, model.OrphanedImage{
			Entity:   ev.Entity,
			RecordID: ev.RecordID,
			Ref:      ev.Ref,
			Reason:   ev.Reason,
		})
		if err != nil {
			return fmt.Errorf("save orphaned image: %w", err)
		}

		zlog.Logger.Warn().
			Str("orphan_id", id.String()).
			Str("entity_type", string(ev.Entity)).
			Str("ref", ev.Ref).
			Msg("orphaned image recorded for manual cleanup")
	case model.AuditUpsertCommitted, model.AuditRecordDeleted:
		zlog.Logger.Info().
			Str("event_type", string(ev.Type)).
			Str("entity_type", string(ev.Entity)).
			Str("record_id", ev.RecordID.String()).
			Msg("catalog mutation")
	default:
		zlog.Logger.Warn().
			Str("event_type", string(ev.Type)).
			Msg("unknown audit event type, skipping")
	}

	return nil
}
