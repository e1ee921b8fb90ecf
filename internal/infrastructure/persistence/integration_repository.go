package persistence

import (
	"context"
	"errors"

	"github.com/erp/pdfengine/internal/domain/integration"
	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIntegrationRepository implements integration.Repository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

var _ integration.Repository = (*GormIntegrationRepository)(nil)

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindByID finds an integration record by ID
func (r *GormIntegrationRepository) FindByID(ctx context.Context, id string) (*integration.Integration, error) {
	var model models.IntegrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates an integration record
func (r *GormIntegrationRepository) Save(ctx context.Context, i *integration.Integration) error {
	model, err := models.IntegrationModelFromDomain(i)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}
