package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transfer, error) {
	var model models.TransferModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a transfer and locks its row for the rest of the transaction
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Transfer, error) {
	var model models.TransferModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Transfer, error) {
	var transferModels []models.TransferModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TransferModel{}), filter)
	query = paginate(query, filter, TransferSortFields, "created_at", "id")
	if err := query.Find(&transferModels).Error; err != nil {
		return nil, err
	}
	transfers := make([]inventory.Transfer, len(transferModels))
	for i := range transferModels {
		transfers[i] = *transferModels[i].ToDomain()
	}
	return transfers, nil
}

// Count counts transfers matching the filter
func (r *GormTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TransferModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a transfer
func (r *GormTransferRepository) Save(ctx context.Context, transfer *inventory.Transfer) error {
	return r.db.WithContext(ctx).Save(models.TransferModelFromDomain(transfer)).Error
}

func (r *GormTransferRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "store_id":
			query = query.Where("from_store_id = ? OR to_store_id = ?", value, value)
		}
	}
	return query
}

// Ensure GormTransferRepository implements TransferRepository
var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
