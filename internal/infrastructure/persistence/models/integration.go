package models

import (
	"fmt"
	"time"

	"github.com/erp/pdfengine/internal/domain/integration"
)

// IntegrationModel is the GORM model for integrations table.
// The integration specific fields are kept as a JSON document.
type IntegrationModel struct {
	ID        string    `gorm:"type:varchar(100);primaryKey"`
	Enabled   bool      `gorm:"not null;default:false"`
	DataJSON  string    `gorm:"column:data;type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for IntegrationModel
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts IntegrationModel to domain Integration
func (m *IntegrationModel) ToDomain() (*integration.Integration, error) {
	data, err := decodeMap(m.DataJSON)
	if err != nil {
		return nil, fmt.Errorf("decode data of integration %s: %w", m.ID, err)
	}
	return &integration.Integration{
		ID:        m.ID,
		Enabled:   m.Enabled,
		Data:      data,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// IntegrationModelFromDomain creates an IntegrationModel from domain Integration
func IntegrationModelFromDomain(i *integration.Integration) (*IntegrationModel, error) {
	data, err := encodeMap(i.Data)
	if err != nil {
		return nil, fmt.Errorf("encode data of integration %s: %w", i.ID, err)
	}
	return &IntegrationModel{
		ID:        i.ID,
		Enabled:   i.Enabled,
		DataJSON:  data,
		UpdatedAt: i.UpdatedAt,
	}, nil
}
