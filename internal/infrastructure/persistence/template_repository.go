package persistence

import (
	"context"
	"errors"

	"github.com/erp/pdfengine/internal/domain/printing"
	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository implements printing.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

var _ printing.TemplateRepository = (*GormTemplateRepository)(nil)

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByID finds a template by ID
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.Template, error) {
	var model models.TemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a template
func (r *GormTemplateRepository) Save(ctx context.Context, template *printing.Template) error {
	model := models.TemplateModelFromDomain(template)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}
