package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps uploaded images in a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the upload directory exists.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error {
	// filepath.Base keeps path traversal out of the upload dir
	path := filepath.Join(s.dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}

// Open returns the stored image; the error wraps fs.ErrNotExist when the
// filename is unknown so callers can map it to a 404.
func (s *DiskStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(filename)))
}
