package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/erp/pdfengine/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3Store_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing bucket", func(t *testing.T) {
		_, err := NewS3Store(ctx, config.StorageConfig{AccessKey: "k", SecretKey: "s"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("access key without secret", func(t *testing.T) {
		_, err := NewS3Store(ctx, config.StorageConfig{Bucket: "b", AccessKey: "k"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("default credential chain", func(t *testing.T) {
		s, err := NewS3Store(ctx, config.StorageConfig{Bucket: "attachments"}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "attachments", s.Bucket())
		assert.Equal(t, DefaultMaxObjectSize, s.maxObjectSize)
	})

	t.Run("explicit limits", func(t *testing.T) {
		s, err := NewS3Store(ctx, config.StorageConfig{
			Bucket:        "attachments",
			AccessKey:     "k",
			SecretKey:     "s",
			Endpoint:      "minio:9000",
			UsePathStyle:  true,
			MaxObjectSize: 1024,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1024), s.maxObjectSize)
	})
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000", true))
}

// fakeS3 serves path style GetObject and HeadBucket for one bucket
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	gets    []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist.</Message></Error>`)
		return
	}

	switch {
	case r.Method == http.MethodHead && key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		f.gets = append(f.gets, key)
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3Store(t *testing.T, bucket string, objects map[string][]byte, maxSize int64) (*S3Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "attachments", objects: objects}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:        bucket,
		AccessKey:     "test-key",
		SecretKey:     "test-secret",
		Endpoint:      server.URL,
		UsePathStyle:  true,
		MaxObjectSize: maxSize,
	}, nil)
	require.NoError(t, err)
	return s, fake
}

func TestS3Store_Get(t *testing.T) {
	ctx := context.Background()
	s, fake := newFakeS3Store(t, "attachments", map[string][]byte{
		"crm/logo.png": []byte("png-bytes"),
		"crm/big.bin":  []byte(strings.Repeat("x", 64)),
	}, 32)

	t.Run("existing object", func(t *testing.T) {
		data, err := s.Get(ctx, "crm/logo.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := s.Get(ctx, "crm/missing.png")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("object too large", func(t *testing.T) {
		_, err := s.Get(ctx, "crm/big.bin")
		assert.ErrorIs(t, err, ErrObjectTooLarge)
	})

	t.Run("empty key is not sent", func(t *testing.T) {
		calls := len(fake.gets)
		_, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
		assert.Len(t, fake.gets, calls)
	})
}

func TestS3Store_Ping(t *testing.T) {
	ctx := context.Background()

	s, _ := newFakeS3Store(t, "attachments", nil, 0)
	assert.NoError(t, s.Ping(ctx))

	missing, _ := newFakeS3Store(t, "other", nil, 0)
	err := missing.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket other")
}
