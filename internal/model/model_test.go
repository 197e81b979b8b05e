package model_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftspace/catalog/internal/model"
)

func TestEntityType_Placeholders(t *testing.T) {
	for _, entity := range []model.EntityType{
		model.EntityEvent,
		model.EntityWorkshop,
		model.EntityProduct,
		model.EntitySubscriptionBox,
		model.EntityProfile,
	} {
		assert.True(t, entity.Valid())
		assert.NotEmpty(t, entity.Category())
		assert.True(t, model.IsPlaceholder(entity.Placeholder()), "placeholder for %s must be recognized", entity)
	}

	assert.False(t, model.IsPlaceholder("/images/events/abc.jpg"))
	assert.False(t, model.EntityType("page").Valid())
}

func TestNewPendingUpload_AcceptsAllowedTypes(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/jfif", "image/png", "image/webp", "image/avif"} {
		up, err := model.NewPendingUpload([]byte("data"), ct, "file", model.EntityEvent)
		require.NoError(t, err, ct)
		assert.Equal(t, ct, up.ContentType)
	}
}

func TestNewPendingUpload_RejectsBadInput(t *testing.T) {
	_, err := model.NewPendingUpload(nil, "image/jpeg", "file.jpg", model.EntityEvent)
	assert.ErrorIs(t, err, model.ErrEmptyUpload)

	_, err = model.NewPendingUpload([]byte("data"), "application/pdf", "file.pdf", model.EntityEvent)
	assert.ErrorIs(t, err, model.ErrUnsupportedImageType)

	oversized := bytes.Repeat([]byte{0xff}, model.MaxUploadBytes+1)
	_, err = model.NewPendingUpload(oversized, "image/jpeg", "huge.jpg", model.EntityEvent)
	assert.ErrorIs(t, err, model.ErrUploadTooLarge)
}

func TestSubscriptionStatus_Transitions(t *testing.T) {
	assert.True(t, model.SubscriptionActive.CanTransition(model.SubscriptionPaused))
	assert.True(t, model.SubscriptionActive.CanTransition(model.SubscriptionCancelled))
	assert.True(t, model.SubscriptionPaused.CanTransition(model.SubscriptionActive))
	assert.True(t, model.SubscriptionPaused.CanTransition(model.SubscriptionCancelled))

	assert.False(t, model.SubscriptionCancelled.CanTransition(model.SubscriptionActive))
	assert.False(t, model.SubscriptionCancelled.CanTransition(model.SubscriptionPaused))
	assert.False(t, model.SubscriptionActive.CanTransition(model.SubscriptionActive))
}
