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

// GormEntityRepository implements printing.EntityRepository on the entity_snapshots table
type GormEntityRepository struct {
	db *gorm.DB
}

var _ printing.EntityRepository = (*GormEntityRepository)(nil)

// NewGormEntityRepository creates a new GormEntityRepository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

// FindByID finds an entity snapshot by type and ID
func (r *GormEntityRepository) FindByID(ctx context.Context, entityType, id string) (*printing.Entity, error) {
	var model models.EntityModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save stores an entity snapshot, replacing earlier attributes
func (r *GormEntityRepository) Save(ctx context.Context, entity *printing.Entity) error {
	model, err := models.EntityModelFromDomain(entity)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}
