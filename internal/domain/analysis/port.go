package analysis

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence history)
type Repository interface {
	// Init ensures the backing table exists; safe to call on every start.
	Init(ctx context.Context) error
	Save(ctx context.Context, a *Analysis) error
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]*Analysis, error)
	DeleteAll(ctx context.Context) error
}

// Classifier port (interface untuk model eksternal).
// The classification is always usable: on failure implementations return the
// sentinel together with the underlying error, and the pipeline continues.
type Classifier interface {
	Classify(ctx context.Context, image []byte, contentType string) (Classification, error)
}

// ImageStore port (interface untuk penyimpanan gambar upload)
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}
