package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appinv "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGorm opens a PostgreSQL-dialect gorm.DB on top of sqlmock
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func productRows(id uuid.UUID, stock int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "name", "sku",
		"price", "cost", "wholesale_price", "track_stock", "available_for_sale", "stock", "stock_by_store",
	}).AddRow(
		id, now, now, 3, "Widget", "W-1",
		"10.0000", "6.0000", "8.0000", true, true, stock, nil,
	)
}

func TestGormProductRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY "products"."id" LIMIT \$2 FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(productRows(id, 9))

		product, err := repo.FindByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, 9, product.Stock)
		assert.Equal(t, 3, product.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing rows to NOT_FOUND", func(t *testing.T) {
		db, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY "products"."id" LIMIT \$2 FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByIDForUpdate(context.Background(), id)
		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransferRepository_FindByIDForUpdate(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormTransferRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "transfers" WHERE id = \$1 ORDER BY "transfers"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindByIDForUpdate(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsConcurrencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "55P03"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConcurrencyConflict(tt.err))
		})
	}
}

func TestGormTransactionScope_MapsConflicts(t *testing.T) {
	db, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	scope := NewGormTransactionScope(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := scope.Execute(context.Background(), func(repos appinv.TransactionalRepositories) error {
		assert.NotNil(t, repos.ProductRepo())
		return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
