package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SettingModel is the GORM model for settings table.
// Each row holds one configuration value encoded as JSON.
type SettingModel struct {
	Name      string    `gorm:"type:varchar(100);primaryKey"`
	ValueJSON string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}

// Value decodes the stored JSON value
func (m *SettingModel) Value() (any, error) {
	var v any
	if err := json.Unmarshal([]byte(m.ValueJSON), &v); err != nil {
		return nil, fmt.Errorf("decode setting %s: %w", m.Name, err)
	}
	return v, nil
}

// NewSettingModel encodes a configuration value
func NewSettingModel(name string, value any) (*SettingModel, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode setting %s: %w", name, err)
	}
	return &SettingModel{
		Name:      name,
		ValueJSON: string(b),
		UpdatedAt: time.Now(),
	}, nil
}
