package subscription_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craftspace/catalog/internal/model"
	"github.com/craftspace/catalog/internal/repository/record"
	"github.com/craftspace/catalog/internal/service/subscription"
)

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) Get(ctx context.Context, entity model.EntityType, id uuid.UUID) (model.Record, error) {
	args := m.Called(ctx, entity, id)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *mockRecordStore) Update(ctx context.Context, entity model.EntityType, id uuid.UUID, p model.Payload) (model.Record, error) {
	args := m.Called(ctx, entity, id, p)
	return args.Get(0).(model.Record), args.Error(1)
}

func box(id uuid.UUID, status string) model.Record {
	fields := map[string]any{"title": "Monthly clay box", "price": 29.0}
	if status != "" {
		fields["status"] = status
	}
	return model.Record{
		ID:     id,
		Entity: model.EntitySubscriptionBox,
		Image:  "/images/subscription-boxes/box.jpg",
		Fields: fields,
	}
}

func TestTransition_ActiveToPaused(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordStore{}
	svc := subscription.NewService(records)

	id := uuid.New()
	records.On("Get", ctx, model.EntitySubscriptionBox, id).Return(box(id, "active"), nil)
	records.On("Update", ctx, model.EntitySubscriptionBox, id, mock.MatchedBy(func(p model.Payload) bool {
		return p.Fields["status"] == "paused" && p.Image == "/images/subscription-boxes/box.jpg"
	})).Return(box(id, "paused"), nil)

	rec, err := svc.Transition(ctx, id, model.SubscriptionPaused)

	require.NoError(t, err)
	assert.Equal(t, "paused", rec.Fields["status"])
	records.AssertExpectations(t)
}

func TestTransition_MissingStatusTreatedAsActive(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordStore{}
	svc := subscription.NewService(records)

	id := uuid.New()
	records.On("Get", ctx, model.EntitySubscriptionBox, id).Return(box(id, ""), nil)
	records.On("Update", ctx, model.EntitySubscriptionBox, id, mock.Anything).Return(box(id, "cancelled"), nil)

	_, err := svc.Transition(ctx, id, model.SubscriptionCancelled)

	require.NoError(t, err)
}

func TestTransition_CancelledIsTerminal(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordStore{}
	svc := subscription.NewService(records)

	id := uuid.New()
	records.On("Get", ctx, model.EntitySubscriptionBox, id).Return(box(id, "cancelled"), nil)

	_, err := svc.Transition(ctx, id, model.SubscriptionActive)

	assert.ErrorIs(t, err, subscription.ErrInvalidTransition)
	records.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_UnknownStatusRejectedBeforeLookup(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordStore{}
	svc := subscription.NewService(records)

	_, err := svc.Transition(ctx, uuid.New(), model.SubscriptionStatus("archived"))

	assert.ErrorIs(t, err, subscription.ErrInvalidTransition)
	records.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_BoxNotFound(t *testing.T) {
	ctx := context.Background()
	records := &mockRecordStore{}
	svc := subscription.NewService(records)

	id := uuid.New()
	records.On("Get", ctx, model.EntitySubscriptionBox, id).Return(model.Record{}, record.ErrNotFound)

	_, err := svc.Transition(ctx, id, model.SubscriptionPaused)

	assert.ErrorIs(t, err, record.ErrNotFound)
}
