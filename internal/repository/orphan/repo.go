package orphan

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/craftspace/catalog/internal/model"
)

// Repository persists orphaned image references for manual cleanup.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Save records an orphaned image reference and returns its ID.
func (r *Repository) Save(ctx context.Context, o model.OrphanedImage) (uuid.UUID, error) {
	query := `
		INSERT INTO orphaned_images (entity_type, record_id, ref, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var recordID any
	if o.RecordID != uuid.Nil {
		recordID = o.RecordID
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(
		ctx, query, o.Entity, recordID, o.Ref, o.Reason,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save: failed to save orphaned image: %w", err)
	}

	return id, nil
}

// List retrieves all known orphaned images, oldest first.
func (r *Repository) List(ctx context.Context) ([]model.OrphanedImage, error) {
	query := `
		SELECT id, entity_type, COALESCE(record_id, '00000000-0000-0000-0000-000000000000'), ref, reason, created_at
		FROM orphaned_images
		ORDER BY created_at
	`

	rows, err := r.db.Master.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: failed to list orphaned images: %w", err)
	}
	defer rows.Close()

	var orphans []model.OrphanedImage
	for rows.Next() {
		var o model.OrphanedImage
		if err := rows.Scan(&o.ID, &o.Entity, &o.RecordID, &o.Ref, &o.Reason, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("list: failed to scan orphaned image: %w", err)
		}
		orphans = append(orphans, o)
	}

	return orphans, rows.Err()
}
