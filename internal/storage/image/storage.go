package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/craftspace/catalog/internal/model"
)

// ErrStorageUnavailable is returned when the image backend cannot be
// reached or rejects an operation.
var ErrStorageUnavailable = errors.New("image storage unavailable")

// extensions maps accepted content types to the stored object extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jfif": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Storage provides an S3-compatible image store backed by MinIO.
// Objects are keyed by category subdirectory and a generated name;
// references are the "/<bucket-relative>" paths embedded in records.
type Storage struct {
	client     *minio.Client
	bucketName string
}

// NewStorage connects to the MinIO server and ensures the bucket exists.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Store uploads the pending file under its entity's image category and
// returns the stable reference to embed in a record. Either the object
// exists and a reference is returned, or nothing was stored.
func (s *Storage) Store(ctx context.Context, up *model.PendingUpload) (string, error) {
	objectName := path.Join("images", up.Entity.Category(), uuid.NewString()+extensions[up.ContentType])

	_, err := s.client.PutObject(
		ctx, s.bucketName, objectName,
		bytes.NewReader(up.Data), int64(len(up.Data)),
		minio.PutObjectOptions{ContentType: up.ContentType},
	)
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", ErrStorageUnavailable, objectName, err)
	}

	return "/" + objectName, nil
}

// Remove deletes the referenced object. It is idempotent: removing a
// reference that no longer exists, an empty reference, or a category
// placeholder succeeds silently, since compensation paths may race with
// concurrent edits.
func (s *Storage) Remove(ctx context.Context, ref string) error {
	if ref == "" || model.IsPlaceholder(ref) {
		return nil
	}

	objectName := strings.TrimPrefix(ref, "/")
	err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("%w: remove object %s: %v", ErrStorageUnavailable, objectName, err)
	}

	return nil
}
