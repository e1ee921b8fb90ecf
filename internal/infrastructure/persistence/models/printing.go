package models

import (
	"fmt"
	"time"

	"github.com/erp/pdfengine/internal/domain/printing"
)

// TemplateModel is the GORM model for print_templates table
type TemplateModel struct {
	BaseModel
	Name            string  `gorm:"type:varchar(255);not null"`
	EntityType      string  `gorm:"column:entity_type;type:varchar(100);not null;index"`
	PageFormat      string  `gorm:"column:page_format;type:varchar(50);not null;default:'A4'"`
	PageOrientation string  `gorm:"column:page_orientation;type:varchar(20);not null;default:'Portrait'"`
	PageWidth       float64 `gorm:"column:page_width;not null;default:0"`
	PageHeight      float64 `gorm:"column:page_height;not null;default:0"`
	MarginTop       float64 `gorm:"column:margin_top;not null;default:10"`
	MarginRight     float64 `gorm:"column:margin_right;not null;default:10"`
	MarginBottom    float64 `gorm:"column:margin_bottom;not null;default:20"`
	MarginLeft      float64 `gorm:"column:margin_left;not null;default:10"`
	HeaderPosition  float64 `gorm:"column:header_position;not null;default:0"`
	FooterPosition  float64 `gorm:"column:footer_position;not null;default:10"`
	PrintHeader     bool    `gorm:"column:print_header;not null;default:false"`
	PrintFooter     bool    `gorm:"column:print_footer;not null;default:false"`
	Title           *string `gorm:"type:varchar(255)"`
	Style           string  `gorm:"type:text"`
	FontFace        *string `gorm:"column:font_face;type:varchar(100)"`
	Header          string  `gorm:"type:text"`
	Body            string  `gorm:"type:text"`
	Footer          string  `gorm:"type:text"`
}

// TableName returns the table name for TemplateModel
func (TemplateModel) TableName() string {
	return "print_templates"
}

// ToDomain converts TemplateModel to domain Template
func (m *TemplateModel) ToDomain() *printing.Template {
	return &printing.Template{
		BaseEntity:      m.BaseModel.ToDomain(),
		Name:            m.Name,
		EntityType:      m.EntityType,
		PageFormat:      m.PageFormat,
		PageOrientation: printing.Orientation(m.PageOrientation),
		PageWidth:       m.PageWidth,
		PageHeight:      m.PageHeight,
		Margins: printing.Margins{
			Top:    m.MarginTop,
			Right:  m.MarginRight,
			Bottom: m.MarginBottom,
			Left:   m.MarginLeft,
		},
		HeaderPosition: m.HeaderPosition,
		FooterPosition: m.FooterPosition,
		PrintHeader:    m.PrintHeader,
		PrintFooter:    m.PrintFooter,
		Title:          m.Title,
		Style:          m.Style,
		FontFace:       m.FontFace,
		Header:         m.Header,
		Body:           m.Body,
		Footer:         m.Footer,
	}
}

// TemplateModelFromDomain creates a TemplateModel from domain Template
func TemplateModelFromDomain(t *printing.Template) *TemplateModel {
	m := &TemplateModel{
		Name:            t.Name,
		EntityType:      t.EntityType,
		PageFormat:      t.PageFormat,
		PageOrientation: t.PageOrientation.String(),
		PageWidth:       t.PageWidth,
		PageHeight:      t.PageHeight,
		MarginTop:       t.Margins.Top,
		MarginRight:     t.Margins.Right,
		MarginBottom:    t.Margins.Bottom,
		MarginLeft:      t.Margins.Left,
		HeaderPosition:  t.HeaderPosition,
		FooterPosition:  t.FooterPosition,
		PrintHeader:     t.PrintHeader,
		PrintFooter:     t.PrintFooter,
		Title:           t.Title,
		Style:           t.Style,
		FontFace:        t.FontFace,
		Header:          t.Header,
		Body:            t.Body,
		Footer:          t.Footer,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// EntityModel is the GORM model for entity_snapshots table.
// Attributes are kept as a JSON document.
type EntityModel struct {
	EntityType     string    `gorm:"column:entity_type;type:varchar(100);primaryKey"`
	EntityID       string    `gorm:"column:entity_id;type:varchar(64);primaryKey"`
	AttributesJSON string    `gorm:"column:attributes;type:jsonb;not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for EntityModel
func (EntityModel) TableName() string {
	return "entity_snapshots"
}

// ToDomain converts EntityModel to domain Entity
func (m *EntityModel) ToDomain() (*printing.Entity, error) {
	attributes, err := decodeMap(m.AttributesJSON)
	if err != nil {
		return nil, fmt.Errorf("decode attributes of %s %s: %w", m.EntityType, m.EntityID, err)
	}
	return &printing.Entity{
		Type:       m.EntityType,
		ID:         m.EntityID,
		Attributes: attributes,
	}, nil
}

// EntityModelFromDomain creates an EntityModel from domain Entity
func EntityModelFromDomain(e *printing.Entity) (*EntityModel, error) {
	attributes, err := encodeMap(e.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encode attributes of %s %s: %w", e.Type, e.ID, err)
	}
	return &EntityModel{
		EntityType:     e.Type,
		EntityID:       e.ID,
		AttributesJSON: attributes,
	}, nil
}

// AttachmentModel is the GORM model for attachments table
type AttachmentModel struct {
	ID         string    `gorm:"type:varchar(64);primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null"`
	MimeType   string    `gorm:"column:mime_type;type:varchar(100)"`
	StorageKey string    `gorm:"column:storage_key;type:varchar(512);not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for AttachmentModel
func (AttachmentModel) TableName() string {
	return "attachments"
}

// ToDomain converts AttachmentModel to domain Attachment
func (m *AttachmentModel) ToDomain() *printing.Attachment {
	return &printing.Attachment{
		ID:         m.ID,
		Name:       m.Name,
		MimeType:   m.MimeType,
		StorageKey: m.StorageKey,
	}
}

// AttachmentModelFromDomain creates an AttachmentModel from domain Attachment
func AttachmentModelFromDomain(a *printing.Attachment) *AttachmentModel {
	return &AttachmentModel{
		ID:         a.ID,
		Name:       a.Name,
		MimeType:   a.MimeType,
		StorageKey: a.StorageKey,
	}
}
