package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appinv "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createStore(t *testing.T, db *gorm.DB, name string) *partner.Store {
	t.Helper()
	store, err := partner.NewStore(name, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormStoreRepository(db).Save(context.Background(), store))
	return store
}

func newProduct(t *testing.T, sku string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductAttributes{
		Name:             "Product " + sku,
		SKU:              sku,
		Price:            decimal.NewFromInt(10),
		Cost:             decimal.NewFromInt(6),
		TrackStock:       true,
		AvailableForSale: true,
	}, stock)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_RoundTrip(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := persistence.NewGormProductRepository(db.DB)

	storeA := createStore(t, db.DB, "Store A")
	storeB := createStore(t, db.DB, "Store B")

	t.Run("aggregate stock product", func(t *testing.T) {
		p := newProduct(t, "AGG-1", 12)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 12, found.Stock)
		assert.Nil(t, found.StockByStore)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(10)))
		assert.True(t, found.TrackStock)
	})

	t.Run("per-store stock product", func(t *testing.T) {
		p, err := catalog.NewProductWithStoreStock(catalog.ProductAttributes{
			Name: "Per store", SKU: "PS-1", TrackStock: true, AvailableForSale: true,
		}, map[uuid.UUID]int{storeA.ID: 3, storeB.ID: 4})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindBySKU(ctx, "PS-1")
		require.NoError(t, err)
		assert.Equal(t, 7, found.Stock)
		assert.Equal(t, map[uuid.UUID]int{storeA.ID: 3, storeB.ID: 4}, found.StockByStore)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sku uniqueness excludes the product itself", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, "AGG-1")
		require.NoError(t, err)

		exists, err := repo.ExistsBySKU(ctx, "AGG-1", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySKU(ctx, "AGG-1", &found.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("search and paging", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = "sku"
		filter.OrderDir = "asc"
		filter.PageSize = 1

		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "AGG-1", products[0].SKU)

		filter.Search = "ps-"
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormProductRepository_ReassignCategory(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	products := persistence.NewGormProductRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)

	oldCat, err := catalog.NewCategory("Drinks", "")
	require.NoError(t, err)
	newCat, err := catalog.NewCategory("Beverages", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, oldCat))
	require.NoError(t, categories.Save(ctx, newCat))

	var ids []uuid.UUID
	for _, sku := range []string{"D-1", "D-2"} {
		p := newProduct(t, sku, 1)
		p.SetCategory(&oldCat.ID)
		require.NoError(t, products.Save(ctx, p))
		ids = append(ids, p.ID)
	}
	untouched := newProduct(t, "OTHER", 1)
	require.NoError(t, products.Save(ctx, untouched))

	moved, err := products.ReassignCategory(ctx, oldCat.ID, &newCat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	for _, id := range ids {
		p, err := products.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, newCat.ID, *p.CategoryID)
	}

	moved, err = products.ReassignCategory(ctx, newCat.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	uncategorized, err := products.Count(ctx, shared.DefaultFilter().With("category_id", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(3), uncategorized)
}

func appendEntry(t *testing.T, repo *persistence.GormHistoryRepository, productID uuid.UUID, storeID *uuid.UUID, delta, current int) *inventory.HistoryEntry {
	t.Helper()
	entry, err := inventory.NewHistoryEntry(inventory.HistoryEntryInput{
		Type:           inventory.HistoryTypeAdjustmentIn,
		ReferenceID:    uuid.New(),
		ProductID:      productID,
		ProductName:    "Widget",
		QuantityChange: delta,
		CurrentStock:   current,
		StoreID:        storeID,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestGormHistoryRepository_AppendAndBalance(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := persistence.NewGormHistoryRepository(db.DB)

	store := createStore(t, db.DB, "Main")
	productID := uuid.New()

	first := appendEntry(t, repo, productID, &store.ID, 5, 5)
	second := appendEntry(t, repo, productID, &store.ID, -2, 3)
	third := appendEntry(t, repo, productID, nil, 4, 4)

	assert.Greater(t, first.Sequence, int64(0))
	assert.Greater(t, second.Sequence, first.Sequence)
	assert.Greater(t, third.Sequence, second.Sequence)

	t.Run("per store", func(t *testing.T) {
		balance, err := repo.Balance(ctx, productID, &store.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, balance.RunningTotal)
		assert.Equal(t, 3, balance.LatestStock)
		assert.Equal(t, int64(2), balance.EntryCount)
	})

	t.Run("all scopes", func(t *testing.T) {
		balance, err := repo.Balance(ctx, productID, nil)
		require.NoError(t, err)
		assert.Equal(t, 7, balance.RunningTotal)
		assert.Equal(t, 7, balance.LatestStock)
		assert.Equal(t, int64(3), balance.EntryCount)
		assert.True(t, balance.IsConserved())
	})

	t.Run("all scopes sums the last count of each store", func(t *testing.T) {
		other := createStore(t, db.DB, "Annex")
		spread := uuid.New()
		appendEntry(t, repo, spread, &store.ID, 6, 6)
		appendEntry(t, repo, spread, &other.ID, 4, 4)
		appendEntry(t, repo, spread, &store.ID, -1, 5)

		balance, err := repo.Balance(ctx, spread, nil)
		require.NoError(t, err)
		assert.Equal(t, 9, balance.RunningTotal)
		assert.Equal(t, 9, balance.LatestStock)
		assert.True(t, balance.IsConserved())

		balance, err = repo.Balance(ctx, spread, &other.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, balance.LatestStock)
		assert.Equal(t, int64(1), balance.EntryCount)
	})

	t.Run("no movements", func(t *testing.T) {
		balance, err := repo.Balance(ctx, uuid.New(), nil)
		require.NoError(t, err)
		assert.Zero(t, balance.RunningTotal)
		assert.Zero(t, balance.EntryCount)
	})

	t.Run("filtered listing", func(t *testing.T) {
		filter := shared.DefaultFilter().With("store_id", nil)
		entries, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, third.ID, entries[0].ID)

		filter = shared.DefaultFilter().With("product_id", productID)
		filter.OrderBy = "seq"
		filter.OrderDir = "asc"
		entries, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, first.ID, entries[0].ID)
		assert.Equal(t, store.ID, *entries[0].StoreID)
	})

	t.Run("by reference", func(t *testing.T) {
		entries, err := repo.FindByReference(ctx, second.ReferenceID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, -2, entries[0].QuantityChange)
	})
}

func TestGormJournalRepository_AccountTotals(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := persistence.NewGormJournalRepository(db.DB)

	grn, err := finance.NewJournalEntry(time.Now(), finance.ReferenceTypeGRN, uuid.New(), "GRN", shared.Actor{},
		finance.Debit(finance.AccountInventory, decimal.RequireFromString("120.50")),
		finance.Credit(finance.AccountPayable, decimal.RequireFromString("120.50")),
	)
	require.NoError(t, err)
	sale, err := finance.NewJournalEntry(time.Now(), finance.ReferenceTypeSale, uuid.New(), "Sale", shared.Actor{UserID: "u1"},
		finance.Debit(finance.AccountCash, decimal.NewFromInt(30)),
		finance.Credit(finance.AccountSalesRevenue, decimal.NewFromInt(30)),
		finance.Debit(finance.AccountCostOfGoodsSold, decimal.NewFromInt(18)),
		finance.Credit(finance.AccountInventory, decimal.NewFromInt(18)),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, grn))
	require.NoError(t, repo.Save(ctx, sale))

	totals, err := repo.AccountTotals(ctx)
	require.NoError(t, err)

	byAccount := make(map[finance.Account]finance.AccountBalance)
	for _, row := range totals {
		byAccount[row.Account] = row
	}
	require.Len(t, byAccount, 5)
	assert.True(t, byAccount[finance.AccountInventory].Debit.Equal(decimal.RequireFromString("120.50")))
	assert.True(t, byAccount[finance.AccountInventory].Credit.Equal(decimal.NewFromInt(18)))

	tb := finance.BuildTrialBalance(totals)
	assert.Equal(t, finance.TrialBalanceStatusBalanced, tb.Status)
	assert.True(t, tb.TotalDebit.Equal(decimal.RequireFromString("168.50")))

	entries, err := repo.FindByReference(ctx, sale.ReferenceID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Lines, 4)
	assert.Equal(t, finance.AccountCash, entries[0].Lines[0].Account)
	assert.Equal(t, finance.AccountInventory, entries[0].Lines[3].Account)
}

func TestGormTransactionScope_Execute(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	scope := persistence.NewGormTransactionScope(db.DB)
	products := persistence.NewGormProductRepository(db.DB)

	t.Run("commits on success", func(t *testing.T) {
		p := newProduct(t, "TX-OK", 1)
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			return repos.ProductRepo().Save(ctx, p)
		})
		require.NoError(t, err)

		_, err = products.FindByID(ctx, p.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		p := newProduct(t, "TX-FAIL", 1)
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.ProductRepo().Save(ctx, p); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = products.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("history rejects negative stock at the schema level", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			return repos.HistoryRepo().Append(ctx, &inventory.HistoryEntry{
				ID:           uuid.New(),
				Date:         time.Now().UTC(),
				Type:         inventory.HistoryTypeSale,
				ProductID:    uuid.New(),
				CurrentStock: -1,
			})
		})
		assert.Error(t, err)
	})
}
