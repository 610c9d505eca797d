package gcs

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// BlobStore uploads post images to a Cloud Storage bucket with public read.
type BlobStore struct {
	client *storage.Client
	bucket string
}

func NewBlobStore(client *storage.Client, bucket string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket}
}

func (s *BlobStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // images are small, send in one request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return helpers.PublicURL(s.bucket, objectPath), nil
}

func (s *BlobStore) Delete(ctx context.Context, objectPath string) error {
	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

var _ repository.BlobStore = (*BlobStore)(nil)
