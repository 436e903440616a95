package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormJournalRepository implements JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// Save inserts an entry with its lines
func (r *GormJournalRepository) Save(ctx context.Context, entry *finance.JournalEntry) error {
	return r.db.WithContext(ctx).Create(models.JournalEntryModelFromDomain(entry)).Error
}

// FindAll finds journal entries matching the filter, lines included
func (r *GormJournalRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.JournalEntry, error) {
	var entryModels []models.JournalEntryModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.JournalEntryModel{}), filter)
	query = paginate(query, filter, JournalSortFields, "entry_date", "id")
	if err := query.Preload("Lines", orderLines).Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toJournalEntries(entryModels), nil
}

// Count counts journal entries matching the filter
func (r *GormJournalRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.JournalEntryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByReference lists the entries posted for one business document
func (r *GormJournalRepository) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]finance.JournalEntry, error) {
	var entryModels []models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toJournalEntries(entryModels), nil
}

// accountTotalRow accumulates the totals of one account
type accountTotalRow struct {
	Account finance.Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// AccountTotals sums debits and credits per account over every posted line.
// The sum is taken with decimal arithmetic rather than SQL SUM because SQLite
// keeps the amounts as text.
func (r *GormJournalRepository) AccountTotals(ctx context.Context) ([]finance.AccountBalance, error) {
	var lines []models.JournalLineModel
	if err := r.db.WithContext(ctx).
		Select("account", "debit", "credit").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	totals := make(map[finance.Account]*accountTotalRow)
	var order []finance.Account
	for _, line := range lines {
		row, ok := totals[line.Account]
		if !ok {
			row = &accountTotalRow{Account: line.Account, Debit: decimal.Zero, Credit: decimal.Zero}
			totals[line.Account] = row
			order = append(order, line.Account)
		}
		row.Debit = row.Debit.Add(line.Debit)
		row.Credit = row.Credit.Add(line.Credit)
	}

	balances := make([]finance.AccountBalance, 0, len(order))
	for _, account := range order {
		row := totals[account]
		balances = append(balances, finance.AccountBalance{
			Account: row.Account,
			Debit:   row.Debit,
			Credit:  row.Credit,
		})
	}
	return balances, nil
}

func (r *GormJournalRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "date_from":
			query = query.Where("entry_date >= ?", value)
		case "date_to":
			query = query.Where("entry_date <= ?", value)
		}
	}
	return query
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

func toJournalEntries(entryModels []models.JournalEntryModel) []finance.JournalEntry {
	entries := make([]finance.JournalEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormJournalRepository implements JournalRepository
var _ finance.JournalRepository = (*GormJournalRepository)(nil)
