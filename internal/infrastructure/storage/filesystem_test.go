package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, key string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func TestFileStore_Get(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "2026/03/logo.png", []byte("png"))
	writeFile(t, root, "big.bin", make([]byte, 17))

	s, err := NewFileStore(root, 16, nil)
	require.NoError(t, err)

	t.Run("existing object", func(t *testing.T) {
		data, err := s.Get(ctx, "2026/03/logo.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), data)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("directory is not an object", func(t *testing.T) {
		_, err := s.Get(ctx, "2026")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("object too large", func(t *testing.T) {
		_, err := s.Get(ctx, "big.bin")
		assert.ErrorIs(t, err, ErrObjectTooLarge)
	})

	t.Run("rejects keys outside the root", func(t *testing.T) {
		for _, key := range []string{"../../etc/passwd", ".", "a/../.."} {
			_, err := s.Get(ctx, key)
			require.Error(t, err, key)
			assert.Contains(t, err.Error(), "invalid storage key", key)
		}

		_, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

func TestFileStore_Ping(t *testing.T) {
	root := t.TempDir()

	s, err := NewFileStore(root, 0, nil)
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, DefaultMaxObjectSize, s.maxObjectSize)

	missing, err := NewFileStore(filepath.Join(root, "absent"), 0, nil)
	require.NoError(t, err, "a missing directory does not prevent startup")
	assert.Error(t, missing.Ping(context.Background()))

	_, err = missing.Get(context.Background(), "logo.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("", 0, nil)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("filesystem backend", func(t *testing.T) {
		s, err := New(ctx, &config.StorageConfig{Backend: BackendFilesystem, BasePath: t.TempDir()}, nil)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("empty backend is filesystem", func(t *testing.T) {
		s, err := New(ctx, &config.StorageConfig{BasePath: t.TempDir()}, nil)
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("s3 backend", func(t *testing.T) {
		s, err := New(ctx, &config.StorageConfig{
			Backend:   BackendS3,
			Bucket:    "b",
			AccessKey: "k",
			SecretKey: "s",
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &S3Store{}, s)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(ctx, &config.StorageConfig{Backend: "ftp"}, nil)
		require.Error(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := New(ctx, nil, nil)
		require.Error(t, err)
	})
}
