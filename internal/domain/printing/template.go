package printing

import (
	"strings"
	"sync"

	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// Template describes a print layout: page geometry, margins, header and
// footer placement, styling and the three markup bodies.
// Composition treats it as read-only input.
type Template struct {
	shared.BaseEntity
	Name            string      `validate:"required,max=255"`
	EntityType      string      `validate:"required,max=100"`
	PageFormat      string      `validate:"required"`
	PageOrientation Orientation `validate:"required,oneof=Portrait Landscape"`
	PageWidth       float64     `validate:"gte=0"`
	PageHeight      float64     `validate:"gte=0"`
	Margins         Margins
	HeaderPosition  float64 `validate:"gte=0"`
	FooterPosition  float64 `validate:"gte=0"`
	PrintHeader     bool
	PrintFooter     bool
	Title           *string
	Style           string
	FontFace        *string
	Header          string
	Body            string
	Footer          string
}

// NewTemplate creates a template with portrait A4 defaults
func NewTemplate(name, entityType string) (*Template, error) {
	t := &Template{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            strings.TrimSpace(name),
		EntityType:      entityType,
		PageFormat:      "A4",
		PageOrientation: OrientationPortrait,
		Margins:         DefaultMargins(),
		HeaderPosition:  0,
		FooterPosition:  10,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func templateValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the template invariants
func (t *Template) Validate() error {
	if err := templateValidator().Struct(t); err != nil {
		return shared.NewDomainError(shared.CodeInvalidTemplate, "Invalid template: "+err.Error())
	}
	if t.IsCustomFormat() && (t.PageWidth <= 0 || t.PageHeight <= 0) {
		return shared.NewDomainError(shared.CodeInvalidTemplate, "Custom page format requires a positive width and height")
	}
	return nil
}

// HasHeader returns true if the header is printed
func (t *Template) HasHeader() bool {
	return t.PrintHeader
}

// HasFooter returns true if the footer is printed
func (t *Template) HasFooter() bool {
	return t.PrintFooter
}

// HasTitle returns true if a document title is set
func (t *Template) HasTitle() bool {
	return t.Title != nil
}

// GetTitle returns the title or an empty string
func (t *Template) GetTitle() string {
	if t.Title == nil {
		return ""
	}
	return *t.Title
}

// GetFontFace returns the template font face and whether it is set
func (t *Template) GetFontFace() (string, bool) {
	if t.FontFace == nil {
		return "", false
	}
	return *t.FontFace, true
}

// IsLandscape returns true only for the landscape orientation
func (t *Template) IsLandscape() bool {
	return t.PageOrientation == OrientationLandscape
}

// IsCustomFormat returns true for explicit width/height templates
func (t *Template) IsCustomFormat() bool {
	return t.PageFormat == PageFormatCustom
}

// IsSinglePage returns true for continuous single page templates
func (t *Template) IsSinglePage() bool {
	return t.PageFormat == PageFormatSinglePage
}
