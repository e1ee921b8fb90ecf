package integration

import (
	"context"
	"errors"
	"maps"

	"github.com/erp/pdfengine/internal/domain/setting"
)

// memoryStore is a setting.Store that applies a batch only when Save succeeds
type memoryStore struct {
	values  map[string]any
	saves   int
	saveErr error
	readErr error
}

func newMemoryStore(values map[string]any) *memoryStore {
	if values == nil {
		values = map[string]any{}
	}
	return &memoryStore{values: values}
}

func (s *memoryStore) Get(_ context.Context, key string) (any, bool, error) {
	if s.readErr != nil {
		return nil, false, s.readErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Writer(_ context.Context) setting.Writer {
	return &memoryWriter{store: s, staged: map[string]any{}}
}

type memoryWriter struct {
	store  *memoryStore
	staged map[string]any
}

func (w *memoryWriter) Set(key string, value any) {
	w.staged[key] = value
}

func (w *memoryWriter) Save(_ context.Context) error {
	w.store.saves++
	if w.store.saveErr != nil {
		return w.store.saveErr
	}
	next := maps.Clone(w.store.values)
	for k, v := range w.staged {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = v
	}
	w.store.values = next
	return nil
}

var errStoreDown = errors.New("store down")
