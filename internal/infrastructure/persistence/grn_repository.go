package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGRNRepository implements GoodsReceivedNoteRepository using GORM
type GormGRNRepository struct {
	db *gorm.DB
}

// NewGormGRNRepository creates a new GormGRNRepository
func NewGormGRNRepository(db *gorm.DB) *GormGRNRepository {
	return &GormGRNRepository{db: db}
}

// FindByID finds a GRN by its ID
func (r *GormGRNRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.GoodsReceivedNote, error) {
	var model models.GRNModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a GRN and locks its row for the rest of the transaction.
// Approval reads through this so two approvals of one note serialize.
func (r *GormGRNRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.GoodsReceivedNote, error) {
	var model models.GRNModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all GRNs matching the filter
func (r *GormGRNRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.GoodsReceivedNote, error) {
	var grnModels []models.GRNModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.GRNModel{}), filter)
	query = paginate(query, filter, GRNSortFields, "created_at", "id")
	if err := query.Find(&grnModels).Error; err != nil {
		return nil, err
	}
	grns := make([]trade.GoodsReceivedNote, len(grnModels))
	for i := range grnModels {
		grns[i] = *grnModels[i].ToDomain()
	}
	return grns, nil
}

// Count counts GRNs matching the filter
func (r *GormGRNRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.GRNModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByReferenceNo checks if a GRN with the given reference number exists
func (r *GormGRNRepository) ExistsByReferenceNo(ctx context.Context, referenceNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GRNModel{}).
		Where("reference_no = ?", referenceNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a GRN
func (r *GormGRNRepository) Save(ctx context.Context, grn *trade.GoodsReceivedNote) error {
	return r.db.WithContext(ctx).Save(models.GRNModelFromDomain(grn)).Error
}

func (r *GormGRNRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(reference_no) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		case "receiving_store_id":
			query = query.Where("receiving_store_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		}
	}
	return query
}

// Ensure GormGRNRepository implements GoodsReceivedNoteRepository
var _ trade.GoodsReceivedNoteRepository = (*GormGRNRepository)(nil)
