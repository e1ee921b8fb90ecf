// Package hook dispatches after-save callbacks for persisted records.
package hook

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// AfterSaveHook runs after a record of the registered entity type was saved
type AfterSaveHook interface {
	AfterSave(ctx context.Context, entity any) error
}

// AfterSaveFunc adapts a function to AfterSaveHook
type AfterSaveFunc func(ctx context.Context, entity any) error

// AfterSave implements AfterSaveHook
func (f AfterSaveFunc) AfterSave(ctx context.Context, entity any) error {
	return f(ctx, entity)
}

// Typed adapts a hook that accepts a concrete record type.
// Dispatching any other type is an error.
func Typed[T any](fn func(ctx context.Context, entity T) error) AfterSaveHook {
	return AfterSaveFunc(func(ctx context.Context, entity any) error {
		typed, ok := entity.(T)
		if !ok {
			var zero T
			return fmt.Errorf("hook expects %T, got %T", zero, entity)
		}
		return fn(ctx, typed)
	})
}

// Dispatcher keeps the hooks of each entity type in registration order
type Dispatcher struct {
	mu     sync.RWMutex
	hooks  map[string][]AfterSaveHook
	logger *zap.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		hooks:  make(map[string][]AfterSaveHook),
		logger: logger,
	}
}

// Register adds a hook for an entity type
func (d *Dispatcher) Register(entityType string, hook AfterSaveHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[entityType] = append(d.hooks[entityType], hook)
	d.logger.Debug("after-save hook registered", zap.String("entity_type", entityType))
}

// Hooks returns the hooks registered for an entity type
func (d *Dispatcher) Hooks(entityType string) []AfterSaveHook {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]AfterSaveHook, len(d.hooks[entityType]))
	copy(result, d.hooks[entityType])
	return result
}

// AfterSave runs the hooks of entityType in order and stops at the first error
func (d *Dispatcher) AfterSave(ctx context.Context, entityType string, entity any) error {
	for i, h := range d.Hooks(entityType) {
		if err := d.run(ctx, h, entity); err != nil {
			d.logger.Error("after-save hook failed",
				zap.String("entity_type", entityType),
				zap.Int("hook", i),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

// run converts a hook panic into an error
func (d *Dispatcher) run(ctx context.Context, h AfterSaveHook, entity any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("after-save hook panicked: %v", r)
		}
	}()
	return h.AfterSave(ctx, entity)
}
