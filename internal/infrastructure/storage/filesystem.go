package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore reads attachments from files below a root directory, the layout
// of a CRM data/upload directory mounted into the container
type FileStore struct {
	root          string
	maxObjectSize int64
	logger        *zap.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at basePath. A missing directory is
// logged and reported by Ping, attachments then resolve as not found.
func NewFileStore(basePath string, maxObjectSize int64, logger *zap.Logger) (*FileStore, error) {
	if basePath == "" {
		return nil, errors.New("storage base path is required")
	}
	root, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid storage base path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{root: root, maxObjectSize: maxSize(maxObjectSize), logger: logger}
	if err := s.Ping(context.Background()); err != nil {
		logger.Warn("Attachment directory unavailable", zap.String("root", root), zap.Error(err))
	} else {
		logger.Info("Attachment storage on filesystem", zap.String("root", root))
	}
	return s, nil
}

// path resolves a key below the root, rejecting keys that escape it
func (s *FileStore) path(storageKey string) (string, error) {
	if storageKey == "" {
		return "", ErrEmptyKey
	}
	p := filepath.Join(s.root, filepath.FromSlash(storageKey))
	if !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key: %s", storageKey)
	}
	return p, nil
}

// Get reads an attachment, refusing files above the size limit
func (s *FileStore) Get(_ context.Context, storageKey string) ([]byte, error) {
	p, err := s.path(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, ErrObjectNotFound
		}
		if info.Size() > s.maxObjectSize {
			return nil, ErrObjectTooLarge
		}
	}
	return readLimited(f, s.maxObjectSize)
}

// Ping checks that the root is a readable directory
func (s *FileStore) Ping(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage directory: %s is not a directory", s.root)
	}
	return nil
}
