package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/erp/pdfengine/internal/domain/setting"
	"github.com/erp/pdfengine/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsStore implements setting.Store on the settings table
type SettingsStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ setting.Store = (*SettingsStore)(nil)

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *gorm.DB, logger *zap.Logger) *SettingsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsStore{db: db, logger: logger}
}

// Get returns the value and whether the key is set
func (s *SettingsStore) Get(ctx context.Context, key string) (any, bool, error) {
	var model models.SettingModel
	if err := s.db.WithContext(ctx).First(&model, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read setting %s: %w", key, err)
	}
	v, err := model.Value()
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Writer starts a new batch of changes
func (s *SettingsStore) Writer(_ context.Context) setting.Writer {
	return &settingsWriter{store: s, values: map[string]any{}}
}

// settingsWriter stages changes in memory until Save
type settingsWriter struct {
	store *SettingsStore

	mu     sync.Mutex
	keys   []string
	values map[string]any
}

// Set stages a value; nil removes the key
func (w *settingsWriter) Set(key string, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.values[key]; !ok {
		w.keys = append(w.keys, key)
	}
	w.values[key] = value
}

// Save writes all staged changes in one transaction. Nothing is written when any change fails.
func (w *settingsWriter) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.keys) == 0 {
		return nil
	}

	err := w.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range w.keys {
			value := w.values[key]
			if value == nil {
				if err := tx.Delete(&models.SettingModel{}, "name = ?", key).Error; err != nil {
					return fmt.Errorf("remove setting %s: %w", key, err)
				}
				continue
			}
			model, err := models.NewSettingModel(key, value)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
				return fmt.Errorf("write setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.store.logger.Debug("Settings saved", zap.Strings("keys", w.keys))
	w.keys = nil
	w.values = map[string]any{}
	return nil
}
