package catalog_test

import (
	"context"
	"io"
	"strings"
	"testing"

	catalogapp "github.com/erp/pos/internal/application/catalog"
	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowImages runs duringUpload before acknowledging the object
type slowImages struct {
	duringUpload func(ctx context.Context)
	keys         []string
}

func (s *slowImages) PutObject(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	if s.duringUpload != nil {
		s.duringUpload(ctx)
	}
	s.keys = append(s.keys, key)
	return "https://images.example.test/" + key, nil
}

func TestUploadImageKeepsConcurrentStockMoves(t *testing.T) {
	db := testutil.NewSQLiteDB(t).DB
	ctx := context.Background()
	txScope := persistence.NewGormTransactionScope(db)
	stockLedger := appinventory.NewStockLedger(nil)
	storeRepo := persistence.NewGormStoreRepository(db)
	products := catalogapp.NewProductService(txScope, stockLedger, persistence.NewGormProductRepository(db),
		persistence.NewGormCategoryRepository(db), nil)
	ledger := appinventory.NewLedgerService(txScope, stockLedger, persistence.NewGormHistoryRepository(db), nil)

	store, err := partner.NewStore("Harbour", "")
	require.NoError(t, err)
	require.NoError(t, storeRepo.Save(ctx, store))
	created, err := products.AddProduct(ctx, catalogapp.CreateProductRequest{
		Name:         "Ceramic Mug",
		SKU:          "MUG-1",
		StockByStore: map[uuid.UUID]int{store.ID: 10},
	}, shared.Actor{})
	require.NoError(t, err)

	images := &slowImages{duringUpload: func(ctx context.Context) {
		level := 7
		_, err := ledger.SetStockLevel(ctx, appinventory.SetStockLevelRequest{
			ProductID: created.ID,
			StoreID:   &store.ID,
			Stock:     &level,
			Reason:    "Three broken while unpacking",
		}, shared.Actor{})
		require.NoError(t, err)
	}}
	products.SetImageStorage(images)

	resp, err := products.UploadImage(ctx, created.ID, "Mug.PNG", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)

	require.Len(t, images.keys, 1)
	assert.True(t, strings.HasSuffix(images.keys[0], ".png"))
	assert.Equal(t, "https://images.example.test/"+images.keys[0], resp.ImageURL)
	assert.Equal(t, 7, resp.StockByStore[store.ID])

	reloaded, err := products.GetByID(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, resp.ImageURL, reloaded.ImageURL)
	assert.Equal(t, 7, reloaded.Stock)

	balance, err := ledger.GetBalance(ctx, created.ID, &store.ID)
	require.NoError(t, err)
	assert.True(t, balance.Conserved, "running total %d, latest %d", balance.RunningTotal, balance.LatestStock)
	assert.Equal(t, 7, balance.LatestStock)
}

func TestUploadImageRejectsUnknownProduct(t *testing.T) {
	db := testutil.NewSQLiteDB(t).DB
	txScope := persistence.NewGormTransactionScope(db)
	products := catalogapp.NewProductService(txScope, appinventory.NewStockLedger(nil), persistence.NewGormProductRepository(db),
		persistence.NewGormCategoryRepository(db), nil)
	images := &slowImages{}
	products.SetImageStorage(images)

	_, err := products.UploadImage(context.Background(), uuid.New(), "a.jpg", "image/jpeg", strings.NewReader("x"), 1)

	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, images.keys, "nothing is uploaded for a missing product")
}
