package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/config"
)

// ObjectStore stores uploaded objects and hands back a URL clients can fetch.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Ping(ctx context.Context) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	opts := OptionsFrom(cfg)
	switch cfg.Backend {
	case "minio":
		return NewMinIOStorage(ctx, opts)
	case "s3":
		return NewS3Storage(ctx, opts)
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}
