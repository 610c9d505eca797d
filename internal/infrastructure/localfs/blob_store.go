package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// URLPrefix is the route under which the HTTP server exposes Root.
const URLPrefix = "/uploads"

// BlobStore writes images below Root and serves them from BaseURL + URLPrefix.
type BlobStore struct {
	Root    string
	BaseURL string
}

func NewBlobStore(root, baseURL string) *BlobStore {
	return &BlobStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *BlobStore) Upload(ctx context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + filepath.FromSlash(objectPath))
	dst := filepath.Join(s.Root, clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	// write to a temp file first so readers never see a partial image
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store %s: %w", objectPath, err)
	}
	return s.BaseURL + URLPrefix + filepath.ToSlash(clean), nil
}

func (s *BlobStore) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(s.Root, filepath.Clean("/"+filepath.FromSlash(objectPath)))
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var _ repository.BlobStore = (*BlobStore)(nil)
