package printing

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository defines the interface for template persistence
type TemplateRepository interface {
	// FindByID finds a template by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Template, error)
	// Save creates or updates a template
	Save(ctx context.Context, template *Template) error
}

// EntityRepository loads entity snapshots
type EntityRepository interface {
	// FindByID finds an entity snapshot by type and ID
	FindByID(ctx context.Context, entityType, id string) (*Entity, error)
	// Save stores an entity snapshot
	Save(ctx context.Context, entity *Entity) error
}

// Attachment describes a stored file referenced from template markup
type Attachment struct {
	ID         string
	Name       string
	MimeType   string
	StorageKey string
}

// AttachmentRepository loads attachment records
type AttachmentRepository interface {
	FindByID(ctx context.Context, id string) (*Attachment, error)
	Save(ctx context.Context, attachment *Attachment) error
}
