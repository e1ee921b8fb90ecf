package integration

import (
	"time"

	"github.com/erp/pdfengine/internal/domain/integration"
)

// SaveIntegrationInput represents a request to create or update an integration record
type SaveIntegrationInput struct {
	ID      string         `json:"id" binding:"required,max=100"`
	Enabled bool           `json:"enabled"`
	Data    map[string]any `json:"data"`
}

// IntegrationResponse represents an integration record
type IntegrationResponse struct {
	ID        string         `json:"id"`
	Enabled   bool           `json:"enabled"`
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toIntegrationResponse(i *integration.Integration) *IntegrationResponse {
	return &IntegrationResponse{
		ID:        i.ID,
		Enabled:   i.Enabled,
		Data:      i.Data,
		UpdatedAt: i.UpdatedAt,
	}
}
