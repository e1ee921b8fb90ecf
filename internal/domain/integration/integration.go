package integration

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/erp/pdfengine/internal/domain/shared"
)

// EntityType is the hook dispatch name of integration records
const EntityType = "Integration"

// Well-known integration identifiers
const (
	IntegrationGotenberg = "Gotenberg"
)

// Data keys of the Gotenberg integration
const (
	KeyGotenbergAPIURL = "gotenbergApiUrl"
)

// Integration is an administrator-configured integration record
type Integration struct {
	ID        string
	Enabled   bool
	Data      map[string]any
	UpdatedAt time.Time
}

// NewIntegration creates an integration record
func NewIntegration(id string, enabled bool, data map[string]any) (*Integration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidIntegration, "Integration ID cannot be empty")
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Integration{
		ID:        id,
		Enabled:   enabled,
		Data:      maps.Clone(data),
		UpdatedAt: time.Now(),
	}, nil
}

// Get returns a data value or nil
func (i *Integration) Get(key string) any {
	return i.Data[key]
}

// GetString returns a data value as a string; nil becomes ""
func (i *Integration) GetString(key string) string {
	switch v := i.Data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Repository defines the interface for integration persistence
type Repository interface {
	FindByID(ctx context.Context, id string) (*Integration, error)
	Save(ctx context.Context, integration *Integration) error
}
