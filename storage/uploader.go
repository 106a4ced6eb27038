package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store holding uploaded character images.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is still present. Listing endpoints
	// use it to drop rows whose backing object was removed from the bucket.
	Exists(ctx context.Context, key string) (bool, error)

	GetPublicURL(key string) string
}
