package printing

import (
	domain "github.com/erp/pdfengine/internal/domain/printing"
)

// PrintRequest selects the template and the entity it is rendered against
type PrintRequest struct {
	TemplateID     string         `json:"template_id" binding:"required,uuid"`
	EntityType     string         `json:"entity_type" binding:"required,max=100"`
	EntityID       string         `json:"entity_id" binding:"required,max=64"`
	ApplyACL       bool           `json:"apply_acl"`
	AdditionalData map[string]any `json:"additional_data"`
}

// PrintResult is a rendered PDF document
type PrintResult struct {
	Content  []byte
	Length   int
	Filename string
	Engine   string
}

// PreviewResponse is the composed markup of a template
type PreviewResponse struct {
	Template string                   `json:"template"`
	Document *domain.ComposedDocument `json:"document"`
}

// EngineStatus describes the PDF engine prints are routed to
type EngineStatus struct {
	Engine          string   `json:"engine"`
	Available       bool     `json:"available"`
	Engines         []string `json:"engines"`
	GotenbergAPIURL string   `json:"gotenberg_api_url,omitempty"`
}
