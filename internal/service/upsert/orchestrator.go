// Package upsert sequences the two-phase image-then-record commit used
// by every admin form that carries an image: store the new image first,
// commit the record second, and reconcile the two with compensating
// cleanup so a committed record never points at a missing blob and a
// failed commit never leaves a stored blob behind.
package upsert

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/model"
)

// ErrCompensationFailed marks a failed compensating removal. It is
// logged with both references for manual cleanup and never surfaced to
// the caller, so it cannot mask the root-cause failure.
var ErrCompensationFailed = errors.New("compensation failed")

// blobStore moves image bytes in and out of the hosting backend.
type blobStore interface {
	Store(ctx context.Context, up *model.PendingUpload) (string, error)
	Remove(ctx context.Context, ref string) error
}

// recordStore is the structured catalog store.
type recordStore interface {
	Create(ctx context.Context, entity model.EntityType, p model.Payload) (model.Record, error)
	Update(ctx context.Context, entity model.EntityType, id uuid.UUID, p model.Payload) (model.Record, error)
}

// auditor receives committed upserts and orphaned-blob notifications.
// Implementations must never fail the operation they observe.
type auditor interface {
	UpsertCommitted(ctx context.Context, rec model.Record)
	BlobOrphaned(ctx context.Context, entity model.EntityType, recordID uuid.UUID, ref string, cause error)
}

// Request is one form submission handed to the orchestrator: the
// entity-specific fields, an optional new image, and on edit the ID and
// current image reference of the record being replaced.
type Request struct {
	Entity       model.EntityType
	RecordID     uuid.UUID // uuid.Nil for create
	Fields       map[string]any
	CurrentImage string // existing reference on edit, "" on create
	Upload       *model.PendingUpload
}

func (r Request) isUpdate() bool {
	return r.RecordID != uuid.Nil
}

// Outcome is the single result of one upsert invocation: either the
// committed record, or the primary failure plus the entity display name
// for user-facing messages.
type Outcome struct {
	Record model.Record
	Entity string
	Err    error
}

// Committed reports whether the record commit succeeded.
func (o Outcome) Committed() bool {
	return o.Err == nil
}

// Orchestrator drives the blob store and the record store through one
// upsert. It holds no per-invocation state; every invocation is a
// self-contained linear sequence.
type Orchestrator struct {
	blobs   blobStore
	records recordStore
	audit   auditor
}

// New creates an Orchestrator over the given stores.
func New(blobs blobStore, records recordStore, audit auditor) *Orchestrator {
	return &Orchestrator{blobs: blobs, records: records, audit: audit}
}

// Upsert runs one create or update.
//
// Invariants upheld:
//   - no PendingUpload means no blob store call of either kind
//   - a failed record commit after a successful store triggers exactly
//     one compensating Remove of the new reference before returning
//   - on edit, the superseded image is removed only after the record
//     commit succeeded
//   - compensating and cleanup failures are logged and reported to the
//     auditor but never change the returned Outcome
func (o *Orchestrator) Upsert(ctx context.Context, req Request) Outcome {
	img := req.CurrentImage
	if img == "" {
		img = req.Entity.Placeholder()
	}

	// Uploading: only when the form carries a new file. Nothing is
	// stored on failure, so there is nothing to compensate yet.
	var pendingRef, priorRef string
	if req.Upload != nil {
		ref, err := o.blobs.Store(ctx, req.Upload)
		if err != nil {
			return o.failed(req, err)
		}

		pendingRef = ref
		if req.isUpdate() && !model.IsPlaceholder(img) {
			priorRef = img
		}
		img = ref
	}

	// Committing: the record commit is the single source of truth for
	// success. The upload above was a prerequisite side effect, never
	// the deciding outcome.
	payload := model.Payload{Image: img, Fields: req.Fields}

	var rec model.Record
	var err error
	if req.isUpdate() {
		rec, err = o.records.Update(ctx, req.Entity, req.RecordID, payload)
	} else {
		rec, err = o.records.Create(ctx, req.Entity, payload)
	}
	if err != nil {
		if pendingRef != "" {
			o.compensate(ctx, req, pendingRef, err)
		}
		return o.failed(req, err)
	}

	// The old image is deleted only now that the new state is durable.
	// Deleting it earlier would risk a committed record pointing at a
	// dead blob, a strictly worse failure than a retained orphan.
	if priorRef != "" && priorRef != pendingRef {
		o.cleanup(ctx, req.Entity, rec.ID, priorRef)
	}

	o.audit.UpsertCommitted(ctx, rec)

	return Outcome{Record: rec, Entity: req.Entity.DisplayName()}
}

// compensate rolls back the newly stored image after a failed commit.
// Its own failure is logged under the original cause and handed to the
// auditor for manual cleanup; the returned Outcome keeps the commit
// failure as its reason.
func (o *Orchestrator) compensate(ctx context.Context, req Request, pendingRef string, cause error) {
	if err := o.blobs.Remove(ctx, pendingRef); err != nil {
		zlog.Logger.Error().
			Err(fmt.Errorf("%w: %v", ErrCompensationFailed, err)).
			Str("entity_type", string(req.Entity)).
			Str("pending_ref", pendingRef).
			Str("prior_ref", req.CurrentImage).
			Str("commit_error", cause.Error()).
			Msg("failed to remove orphaned upload after commit failure")

		o.audit.BlobOrphaned(ctx, req.Entity, req.RecordID, pendingRef, err)
		return
	}

	zlog.Logger.Info().
		Str("entity_type", string(req.Entity)).
		Str("pending_ref", pendingRef).
		Msg("rolled back orphaned upload after commit failure")
}

// cleanup removes the superseded image after a successful commit.
func (o *Orchestrator) cleanup(ctx context.Context, entity model.EntityType, recordID uuid.UUID, priorRef string) {
	if err := o.blobs.Remove(ctx, priorRef); err != nil {
		zlog.Logger.Error().
			Err(fmt.Errorf("%w: %v", ErrCompensationFailed, err)).
			Str("entity_type", string(entity)).
			Str("record_id", recordID.String()).
			Str("prior_ref", priorRef).
			Msg("failed to remove superseded image")

		o.audit.BlobOrphaned(ctx, entity, recordID, priorRef, err)
	}
}

func (o *Orchestrator) failed(req Request, err error) Outcome {
	return Outcome{Entity: req.Entity.DisplayName(), Err: err}
}
