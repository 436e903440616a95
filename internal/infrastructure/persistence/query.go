package persistence

import (
	"errors"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock to a read. Dialects without row locks (SQLite)
// drop the clause and rely on the transaction lock instead.
func forUpdate(query *gorm.DB) *gorm.DB {
	return query.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate applies page/size and a whitelisted ORDER BY to a query
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, tieBreaker string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, allowed, defaultField)
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)
	if tieBreaker != "" && tieBreaker != orderBy {
		query = query.Order(tieBreaker + " " + orderDir)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern. LOWER(...) LIKE works
// on both SQLite and PostgreSQL, unlike ILIKE.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// translateNotFound maps gorm.ErrRecordNotFound to the domain error
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// findOne loads a single row by primary key and converts it.
func findOne[M any, D any](db *gorm.DB, id uuid.UUID, toDomain func(*M) *D) (*D, error) {
	var row M
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return toDomain(&row), nil
}

// findPage runs a filtered query sorted by name and converts every row.
func findPage[M any, D any](query *gorm.DB, filter shared.Filter, sortable map[string]bool, toDomain func(*M) *D) ([]D, error) {
	var rows []M
	if err := paginate(query, filter, sortable, "name", "id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *toDomain(&rows[i])
	}
	return out, nil
}

func countRows(query *gorm.DB) (int64, error) {
	var n int64
	err := query.Count(&n).Error
	return n, err
}
