package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoreRepository and GormSupplierRepository back the partner
// directory. Both are plain name-sorted lists with a free-text search.
type GormStoreRepository struct {
	db *gorm.DB
}

func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) scoped(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.StoreModel{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", p, p)
	}
	if active, ok := filter.Filters["active"]; ok {
		q = q.Where("active = ?", active)
	}
	return q
}

func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Store, error) {
	return findOne(r.db.WithContext(ctx), id, (*models.StoreModel).ToDomain)
}

func (r *GormStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Store, error) {
	return findPage(r.scoped(ctx, filter), filter, StoreSortFields, (*models.StoreModel).ToDomain)
}

func (r *GormStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return countRows(r.scoped(ctx, filter))
}

func (r *GormStoreRepository) Save(ctx context.Context, store *partner.Store) error {
	return r.db.WithContext(ctx).Save(models.StoreModelFromDomain(store)).Error
}

type GormSupplierRepository struct {
	db *gorm.DB
}

func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func (r *GormSupplierRepository) scoped(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.SupplierModel{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", p, p, p)
	}
	return q
}

func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	return findOne(r.db.WithContext(ctx), id, (*models.SupplierModel).ToDomain)
}

func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	return findPage(r.scoped(ctx, filter), filter, SupplierSortFields, (*models.SupplierModel).ToDomain)
}

func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return countRows(r.scoped(ctx, filter))
}

func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error
}

var (
	_ partner.StoreRepository    = (*GormStoreRepository)(nil)
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
)
