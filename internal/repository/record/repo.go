package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/craftspace/catalog/internal/model"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("record service unavailable")
)

// Repository provides CRUD operations for catalog records. All entity
// types share one table; the entity-specific fields are stored as a
// JSON document and the image reference as its own column.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create validates the payload and inserts a new record.
func (r *Repository) Create(ctx context.Context, entity model.EntityType, p model.Payload) (model.Record, error) {
	if err := ValidatePayload(entity, p); err != nil {
		return model.Record{}, err
	}

	fieldsJSON, err := json.Marshal(p.Fields)
	if err != nil {
		return model.Record{}, fmt.Errorf("create: failed to marshal fields: %w", err)
	}

	query := `
		INSERT INTO records (entity_type, image, fields)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	rec := model.Record{Entity: entity, Image: p.Image, Fields: p.Fields}
	err = r.db.QueryRowContext(
		ctx, query, entity, p.Image, fieldsJSON,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: create %s: %v", ErrServiceUnavailable, entity, err)
	}

	return rec, nil
}

// Update validates the payload and overwrites an existing record.
// The last write observed wins; no concurrency token is checked.
func (r *Repository) Update(ctx context.Context, entity model.EntityType, id uuid.UUID, p model.Payload) (model.Record, error) {
	if err := ValidatePayload(entity, p); err != nil {
		return model.Record{}, err
	}

	fieldsJSON, err := json.Marshal(p.Fields)
	if err != nil {
		return model.Record{}, fmt.Errorf("update: failed to marshal fields: %w", err)
	}

	query := `
		UPDATE records
		SET image = $1, fields = $2, updated_at = now()
		WHERE id = $3 AND entity_type = $4
		RETURNING created_at, updated_at
	`

	rec := model.Record{ID: id, Entity: entity, Image: p.Image, Fields: p.Fields}
	err = r.db.QueryRowContext(
		ctx, query, p.Image, fieldsJSON, id, entity,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrNotFound
		}

		return model.Record{}, fmt.Errorf("%w: update %s: %v", ErrServiceUnavailable, entity, err)
	}

	return rec, nil
}

// Get retrieves a record by entity type and ID.
func (r *Repository) Get(ctx context.Context, entity model.EntityType, id uuid.UUID) (model.Record, error) {
	query := `
		SELECT image, fields, created_at, updated_at
		FROM records
		WHERE id = $1 AND entity_type = $2
	`

	rec := model.Record{ID: id, Entity: entity}
	var fieldsBytes []byte

	err := r.db.QueryRowContext(
		ctx, query, id, entity,
	).Scan(&rec.Image, &fieldsBytes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrNotFound
		}

		return model.Record{}, fmt.Errorf("%w: get %s: %v", ErrServiceUnavailable, entity, err)
	}

	if err := json.Unmarshal(fieldsBytes, &rec.Fields); err != nil {
		return model.Record{}, fmt.Errorf("get: failed to unmarshal fields: %w", err)
	}

	return rec, nil
}

// List retrieves all records of the given entity type, newest first.
func (r *Repository) List(ctx context.Context, entity model.EntityType) ([]model.Record, error) {
	query := `
		SELECT id, image, fields, created_at, updated_at
		FROM records
		WHERE entity_type = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Master.QueryContext(ctx, query, entity)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrServiceUnavailable, entity, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec := model.Record{Entity: entity}
		var fieldsBytes []byte

		if err := rows.Scan(&rec.ID, &rec.Image, &fieldsBytes, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: failed to scan record: %w", err)
		}
		if err := json.Unmarshal(fieldsBytes, &rec.Fields); err != nil {
			return nil, fmt.Errorf("list: failed to unmarshal fields: %w", err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrServiceUnavailable, entity, err)
	}

	return records, nil
}

// Delete removes a record. The record's image is intentionally left in
// storage; only replace-on-edit and rollback paths delete images.
func (r *Repository) Delete(ctx context.Context, entity model.EntityType, id uuid.UUID) error {
	query := `
		DELETE FROM records WHERE id = $1 AND entity_type = $2
	`

	res, err := r.db.ExecContext(ctx, query, id, entity)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrServiceUnavailable, entity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: failed to get number of rows affected: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
