package printing

import (
	"maps"

	"github.com/erp/pdfengine/internal/domain/shared"
)

// Margins represents the page margins of a template.
// The composer reads them as millimeters for header/footer positioning,
// the Gotenberg request sends them as points.
type Margins struct {
	Top    float64 `json:"top" validate:"gte=0"`
	Right  float64 `json:"right" validate:"gte=0"`
	Bottom float64 `json:"bottom" validate:"gte=0"`
	Left   float64 `json:"left" validate:"gte=0"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left float64) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError(shared.CodeInvalidMargins, "Margins cannot be negative")
	}
	return Margins{
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Left:   left,
	}, nil
}

// DefaultMargins returns the margins applied to new templates
func DefaultMargins() Margins {
	return Margins{
		Top:    10,
		Right:  10,
		Bottom: 20,
		Left:   10,
	}
}

// IsZero returns true if all margins are zero
func (m Margins) IsZero() bool {
	return m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0
}

// Params are the host print parameters
type Params struct {
	ApplyACL bool `json:"apply_acl"`
}

// Data carries additional values exposed to the template next to the entity attributes
type Data struct {
	AdditionalTemplateData map[string]any `json:"additional_template_data,omitempty"`
}

// NewData creates Data from a map, copying it so later changes by the caller are not observed
func NewData(values map[string]any) Data {
	if len(values) == 0 {
		return Data{}
	}
	return Data{AdditionalTemplateData: maps.Clone(values)}
}
