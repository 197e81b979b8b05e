package model

import (
	"errors"
	"fmt"
)

// MaxUploadBytes is the largest accepted image upload. Enforced before
// any storage call is made.
const MaxUploadBytes = 5 << 20

var (
	ErrEmptyUpload          = errors.New("upload is empty")
	ErrUploadTooLarge       = fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	ErrUnsupportedImageType = errors.New("unsupported image content type")
)

// allowedContentTypes is the accepted image MIME allowlist.
// "image/jfif" is a legacy alias some browsers still send for JPEG.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jfif": true,
	"image/png":  true,
	"image/webp": true,
	"image/avif": true,
}

// PendingUpload is a caller-owned image selected in a form but not yet
// stored. It is consumed at most once per form operation and never
// persisted itself.
type PendingUpload struct {
	Data        []byte
	ContentType string
	Filename    string
	Entity      EntityType
}

// NewPendingUpload validates the raw file against the size cap and the
// MIME allowlist and wraps it for the upsert flow.
func NewPendingUpload(data []byte, contentType, filename string, entity EntityType) (*PendingUpload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}

	return &PendingUpload{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
		Entity:      entity,
	}, nil
}
