// Package storage reads attachment files uploaded by the CRM.
package storage

import (
	"context"
	"errors"
	"fmt"

	infraconfig "github.com/erp/pdfengine/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage backends
const (
	BackendS3         = infraconfig.StorageS3
	BackendFilesystem = infraconfig.StorageFilesystem
)

// DefaultMaxObjectSize caps the bytes read for a single attachment
const DefaultMaxObjectSize int64 = 20 << 20

var (
	// ErrObjectNotFound is returned when the key does not exist
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectTooLarge is returned when an object exceeds the size limit
	ErrObjectTooLarge = errors.New("object exceeds maximum size")
	// ErrEmptyKey is returned for an empty storage key
	ErrEmptyKey = errors.New("storage key is required")
)

// Store reads attachment bytes by storage key. Attachments are written by
// the CRM, never by this service.
type Store interface {
	Get(ctx context.Context, storageKey string) ([]byte, error)
	// Ping checks that the backing bucket or directory is reachable
	Ping(ctx context.Context) error
}

// New creates the store selected by cfg.Backend. An empty backend means filesystem.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage")

	switch cfg.Backend {
	case BackendS3:
		return NewS3Store(ctx, *cfg, logger)
	case BackendFilesystem, "":
		return NewFileStore(cfg.BasePath, cfg.MaxObjectSize, logger)
	}
	return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
}

func maxSize(n int64) int64 {
	if n <= 0 {
		return DefaultMaxObjectSize
	}
	return n
}
