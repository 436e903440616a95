package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHistoryRepository implements HistoryRepository using GORM.
// The table is append-only; the repository exposes no update or delete.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts an entry and copies the assigned sequence back onto it
func (r *GormHistoryRepository) Append(ctx context.Context, entry *inventory.HistoryEntry) error {
	model := models.InventoryHistoryModelFromDomain(entry)
	model.Sequence = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.Sequence = model.Sequence
	return nil
}

// FindAll lists entries matching the filter, newest first by default
func (r *GormHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.HistoryEntry, error) {
	var historyModels []models.InventoryHistoryModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InventoryHistoryModel{}), filter)
	query = paginate(query, filter, HistorySortFields, "seq", "seq")
	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}
	return toHistoryEntries(historyModels), nil
}

// Count counts entries matching the filter
func (r *GormHistoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InventoryHistoryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByReference lists the entries caused by one business document in append order
func (r *GormHistoryRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]inventory.HistoryEntry, error) {
	var historyModels []models.InventoryHistoryModel
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("seq ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}
	return toHistoryEntries(historyModels), nil
}

// balanceRow receives the aggregate part of a balance query
type balanceRow struct {
	RunningTotal int64
	EntryCount   int64
}

// Balance folds the movements of a product, optionally restricted to one store.
// LatestStock sums the current stock of the last entry of every scope in the
// selection: one scope for a store, the aggregate plus each store otherwise.
func (r *GormHistoryRepository) Balance(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID) (*inventory.Balance, error) {
	scope := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.InventoryHistoryModel{}).Where("product_id = ?", productID)
		if storeID != nil {
			query = query.Where("store_id = ?", *storeID)
		}
		return query
	}

	var row balanceRow
	if err := scope().
		Select("COALESCE(SUM(quantity_change), 0) AS running_total, COUNT(*) AS entry_count").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	balance := &inventory.Balance{
		ProductID:    productID,
		StoreID:      storeID,
		RunningTotal: int(row.RunningTotal),
		EntryCount:   row.EntryCount,
	}
	if row.EntryCount == 0 {
		return balance, nil
	}

	var latest int64
	lastPerScope := scope().Select("MAX(seq)").Group("store_id")
	if err := r.db.WithContext(ctx).Model(&models.InventoryHistoryModel{}).
		Where("seq IN (?)", lastPerScope).
		Select("COALESCE(SUM(current_stock), 0)").
		Scan(&latest).Error; err != nil {
		return nil, err
	}
	balance.LatestStock = int(latest)
	return balance, nil
}

func (r *GormHistoryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(product_name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "store_id":
			if value == nil {
				query = query.Where("store_id IS NULL")
			} else {
				query = query.Where("store_id = ?", value)
			}
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "date_from":
			query = query.Where("date >= ?", value)
		case "date_to":
			query = query.Where("date <= ?", value)
		}
	}
	return query
}

func toHistoryEntries(historyModels []models.InventoryHistoryModel) []inventory.HistoryEntry {
	entries := make([]inventory.HistoryEntry, len(historyModels))
	for i := range historyModels {
		entries[i] = *historyModels[i].ToDomain()
	}
	return entries
}

// Ensure GormHistoryRepository implements HistoryRepository
var _ inventory.HistoryRepository = (*GormHistoryRepository)(nil)
