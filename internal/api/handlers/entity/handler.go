// Package entity provides the form controller plumbing shared by every
// catalog entity type. Entity packages contribute only what actually
// differs between them: the payload shape and its pre-validation.
package entity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"

	"github.com/craftspace/catalog/internal/api/form"
	"github.com/craftspace/catalog/internal/api/respond"
	"github.com/craftspace/catalog/internal/model"
	"github.com/craftspace/catalog/internal/service/upsert"
)

// Upserter runs the two-phase image/record upsert.
type Upserter interface {
	Upsert(ctx context.Context, req upsert.Request) upsert.Outcome
}

// RecordStore is the read/delete slice of the catalog store.
type RecordStore interface {
	Get(ctx context.Context, entity model.EntityType, id uuid.UUID) (model.Record, error)
	List(ctx context.Context, entity model.EntityType) ([]model.Record, error)
	Delete(ctx context.Context, entity model.EntityType, id uuid.UUID) error
}

// Preparer normalizes uploads before storage.
type Preparer interface {
	Prepare(up *model.PendingUpload) (*model.PendingUpload, error)
}

// Auditor observes record deletions.
type Auditor interface {
	RecordDeleted(ctx context.Context, rec model.Record)
}

// FieldParser collects and pre-validates the entity-specific form
// fields. A returned error is rendered as a 400 with the field message;
// server-side rules still apply at commit time.
type FieldParser func(c *ginext.Context) (map[string]any, error)

// Handler serves the CRUD endpoints for one entity type.
type Handler struct {
	entity   model.EntityType
	parse    FieldParser
	upserter Upserter
	records  RecordStore
	prepare  Preparer
	audit    Auditor
}

// NewHandler creates a Handler for the given entity type.
func NewHandler(entity model.EntityType, parse FieldParser, u Upserter, r RecordStore, p Preparer, a Auditor) *Handler {
	return &Handler{
		entity:   entity,
		parse:    parse,
		upserter: u,
		records:  r,
		prepare:  p,
		audit:    a,
	}
}

// Create handles the create form submission: field validation, optional
// image extraction, then one orchestrated upsert.
func (h *Handler) Create(c *ginext.Context) {
	// Repeated calls are no-ops; non-multipart forms surface through
	// the field checks.
	_ = c.Request.ParseMultipartForm(model.MaxUploadBytes + 1<<20)

	fields, err := h.parse(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("%s: %v", h.entity.DisplayName(), err))
		return
	}

	up, ok := form.Image(c, h.entity, h.prepare)
	if !ok {
		return
	}

	out := h.upserter.Upsert(c.Request.Context(), upsert.Request{
		Entity: h.entity,
		Fields: fields,
		Upload: up,
	})

	form.WriteOutcome(c, true, out)
}

// Update handles the edit form submission. The current record is loaded
// first so the orchestrator knows which image reference an upload would
// supersede.
func (h *Handler) Update(c *ginext.Context) {
	id, ok := form.ID(c)
	if !ok {
		return
	}

	current, err := h.records.Get(c.Request.Context(), h.entity, id)
	if err != nil {
		form.WriteError(c, err)
		return
	}

	_ = c.Request.ParseMultipartForm(model.MaxUploadBytes + 1<<20)

	fields, err := h.parse(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("%s: %v", h.entity.DisplayName(), err))
		return
	}

	up, ok := form.Image(c, h.entity, h.prepare)
	if !ok {
		return
	}

	out := h.upserter.Upsert(c.Request.Context(), upsert.Request{
		Entity:       h.entity,
		RecordID:     id,
		Fields:       fields,
		CurrentImage: current.Image,
		Upload:       up,
	})

	form.WriteOutcome(c, false, out)
}

// Get serves a single record.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := form.ID(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), h.entity, id)
	if err != nil {
		form.WriteError(c, err)
		return
	}

	respond.OK(c, rec)
}

// List serves all records of the entity type.
func (h *Handler) List(c *ginext.Context) {
	records, err := h.records.List(c.Request.Context(), h.entity)
	if err != nil {
		form.WriteError(c, err)
		return
	}

	respond.OK(c, records)
}

// Delete removes the record. The record's image stays in storage;
// only replace-on-edit and rollback paths delete images.
func (h *Handler) Delete(c *ginext.Context) {
	id, ok := form.ID(c)
	if !ok {
		return
	}

	rec, err := h.records.Get(c.Request.Context(), h.entity, id)
	if err != nil {
		form.WriteError(c, err)
		return
	}

	if err := h.records.Delete(c.Request.Context(), h.entity, id); err != nil {
		form.WriteError(c, err)
		return
	}

	h.audit.RecordDeleted(c.Request.Context(), rec)

	c.Status(http.StatusNoContent)
}
