package repository

import (
	"context"
	"io"
)

// BlobStore stores binary objects and returns a URL that serves them.
// Delete of a missing object is not an error.
type BlobStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}
