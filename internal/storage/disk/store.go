// Package disk stores blobs as files in a local directory.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtroode/signdesk-server/internal/model"
	"github.com/dtroode/signdesk-server/internal/storage"
)

var _ model.BlobStore = (*Store)(nil)

// Store writes blobs under a base directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns Store rooted at dir. The directory is created lazily on write.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Store writes data under a freshly generated name and returns its locator.
func (s *Store) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", storage.Error("create dir", err)
	}

	name := storage.NewName(s.now(), originalName)
	path := filepath.Join(s.dir, name)

	// O_EXCL turns a name collision into an error instead of an overwrite.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", storage.Error("create file", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", storage.Error("write file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", storage.Error("close file", err)
	}

	return storage.Locator(name), nil
}

// Open returns the file stored under name.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !storage.ValidName(name) {
		return nil, model.ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrNotFound
		}
		return nil, storage.Error("open file", err)
	}
	return f, nil
}
