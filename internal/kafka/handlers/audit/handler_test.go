package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/kafka/handlers/audit"
	"github.com/craftspace/catalog/internal/model"
)

func TestMain(m *testing.M) {
	zlog.Init()
	m.Run()
}

type mockOrphanRepo struct {
	mock.Mock
}

func (m *mockOrphanRepo) Save(ctx context.Context, o model.OrphanedImage) (uuid.UUID, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func message(t *testing.T, ev model.AuditEvent) kafkago.Message {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafkago.Message{Value: data}
}

func TestHandle_OrphanedBlobPersisted(t *testing.T) {
	ctx := context.Background()
	orphans := &mockOrphanRepo{}
	h := audit.NewHandler(orphans)

	recordID := uuid.New()
	ev := model.AuditEvent{
		ID:       uuid.New(),
		Type:     model.AuditBlobOrphaned,
		Entity:   model.EntityProduct,
		RecordID: recordID,
		Ref:      "/images/products/lost.jpg",
		Reason:   "image storage unavailable",
		At:       time.Now().UTC(),
	}

	orphans.On("Save", ctx, mock.MatchedBy(func(o model.OrphanedImage) bool {
		return o.Ref == "/images/products/lost.jpg" &&
			o.Entity == model.EntityProduct &&
			o.RecordID == recordID
	})).Return(uuid.New(), nil)

	err := h.Handle(ctx, message(t, ev))

	assert.NoError(t, err)
	orphans.AssertExpectations(t)
}

func TestHandle_CommittedEventOnlyLogged(t *testing.T) {
	ctx := context.Background()
	orphans := &mockOrphanRepo{}
	h := audit.NewHandler(orphans)

	ev := model.AuditEvent{
		ID:       uuid.New(),
		Type:     model.AuditUpsertCommitted,
		Entity:   model.EntityEvent,
		RecordID: uuid.New(),
		At:       time.Now().UTC(),
	}

	err := h.Handle(ctx, message(t, ev))

	assert.NoError(t, err)
	orphans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandle_MalformedMessage(t *testing.T) {
	ctx := context.Background()
	h := audit.NewHandler(&mockOrphanRepo{})

	err := h.Handle(ctx, kafkago.Message{Value: []byte("not json")})

	assert.Error(t, err)
}
