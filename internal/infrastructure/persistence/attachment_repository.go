package persistence

import (
	"context"
	"errors"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAttachmentRepository implements printing.AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

var _ printing.AttachmentRepository = (*GormAttachmentRepository)(nil)

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// FindByID finds an attachment record by ID
func (r *GormAttachmentRepository) FindByID(ctx context.Context, id string) (*printing.Attachment, error) {
	var model models.AttachmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an attachment record
func (r *GormAttachmentRepository) Save(ctx context.Context, attachment *printing.Attachment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(models.AttachmentModelFromDomain(attachment)).Error
}
