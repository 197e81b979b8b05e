package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/craftspace/catalog/internal/model"
)

var ErrInvalidTransition = errors.New("invalid subscription transition")

// recordStore is the slice of the catalog store the lifecycle needs.
type recordStore interface {
	Get(ctx context.Context, entity model.EntityType, id uuid.UUID) (model.Record, error)
	Update(ctx context.Context, entity model.EntityType, id uuid.UUID, p model.Payload) (model.Record, error)
}

// Service drives the subscription box lifecycle. Transitions reuse the
// same record-update call shape as form submissions; the image
// reference passes through untouched, so no blob store call is ever
// involved here.
type Service struct {
	records recordStore
}

// NewService creates a new Service over the given record store.
func NewService(records recordStore) *Service {
	return &Service{records: records}
}

// Transition moves a subscription box to the next lifecycle state.
// Boxes without an explicit status are treated as active.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next model.SubscriptionStatus) (model.Record, error) {
	if !next.Valid() {
		return model.Record{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	rec, err := s.records.Get(ctx, model.EntitySubscriptionBox, id)
	if err != nil {
		return model.Record{}, err
	}

	current := model.SubscriptionActive
	if raw, ok := rec.Fields["status"].(string); ok && raw != "" {
		current = model.SubscriptionStatus(raw)
	}

	if !current.CanTransition(next) {
		return model.Record{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
	}

	fields := make(map[string]any, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		fields[k] = v
	}
	fields["status"] = string(next)

	return s.records.Update(ctx, model.EntitySubscriptionBox, id, model.Payload{
		Image:  rec.Image,
		Fields: fields,
	})
}
