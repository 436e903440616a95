package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) scoped(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.CategoryModel{})
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	return q
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return findOne(r.db.WithContext(ctx), id, (*models.CategoryModel).ToDomain)
}

func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	return findPage(r.scoped(ctx, filter), filter, CategorySortFields, (*models.CategoryModel).ToDomain)
}

func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return countRows(r.scoped(ctx, filter))
}

// ExistsByName compares names case-insensitively.
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	n, err := countRows(r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("LOWER(name) = LOWER(?)", name))
	return n > 0, err
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	if res.Error == nil && res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return res.Error
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
