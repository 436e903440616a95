package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockAdjustmentRepository implements StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// FindByID finds a stock adjustment by its ID
func (r *GormStockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	var model models.StockAdjustmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all stock adjustments matching the filter
func (r *GormStockAdjustmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockAdjustment, error) {
	var adjustmentModels []models.StockAdjustmentModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.StockAdjustmentModel{}), filter)
	query = paginate(query, filter, StockAdjustmentSortFields, "created_at", "id")
	if err := query.Find(&adjustmentModels).Error; err != nil {
		return nil, err
	}
	adjustments := make([]inventory.StockAdjustment, len(adjustmentModels))
	for i := range adjustmentModels {
		adjustments[i] = *adjustmentModels[i].ToDomain()
	}
	return adjustments, nil
}

// Count counts stock adjustments matching the filter
func (r *GormStockAdjustmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.StockAdjustmentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock adjustment
func (r *GormStockAdjustmentRepository) Save(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Save(models.StockAdjustmentModelFromDomain(adjustment)).Error
}

func (r *GormStockAdjustmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "store_id":
			query = query.Where("store_id = ?", value)
		}
	}
	return query
}

// Ensure GormStockAdjustmentRepository implements StockAdjustmentRepository
var _ inventory.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
