package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogapp "github.com/erp/pos/internal/application/catalog"
	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	products    *catalogapp.ProductService
	ledger      *appinventory.LedgerService
	adjustments *appinventory.AdjustmentService
	transfers   *appinventory.TransferService
	stores      partner.StoreRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewSQLiteDB(t).DB

	productRepo := persistence.NewGormProductRepository(db)
	storeRepo := persistence.NewGormStoreRepository(db)
	txScope := persistence.NewGormTransactionScope(db)
	ledger := appinventory.NewStockLedger(nil)

	return &harness{
		products:    catalogapp.NewProductService(txScope, ledger, productRepo, persistence.NewGormCategoryRepository(db), nil),
		ledger:      appinventory.NewLedgerService(txScope, ledger, persistence.NewGormHistoryRepository(db), nil),
		adjustments: appinventory.NewAdjustmentService(txScope, ledger, persistence.NewGormStockAdjustmentRepository(db), nil),
		transfers: appinventory.NewTransferService(txScope, ledger, persistence.NewGormTransferRepository(db),
			productRepo, storeRepo, nil),
		stores: storeRepo,
	}
}

func (h *harness) store(t *testing.T, name string) uuid.UUID {
	t.Helper()
	s, err := partner.NewStore(name, "")
	require.NoError(t, err)
	require.NoError(t, h.stores.Save(context.Background(), s))
	return s.ID
}

func (h *harness) product(t *testing.T, sku string, stock map[uuid.UUID]int) uuid.UUID {
	t.Helper()
	resp, err := h.products.AddProduct(context.Background(), catalogapp.CreateProductRequest{
		Name:         "Item " + sku,
		SKU:          sku,
		StockByStore: stock,
	}, shared.Actor{})
	require.NoError(t, err)
	return resp.ID
}

func (h *harness) stock(t *testing.T, productID uuid.UUID, storeID *uuid.UUID) int {
	t.Helper()
	n, err := h.products.GetEffectiveStock(context.Background(), productID, storeID)
	require.NoError(t, err)
	return n
}

func (h *harness) conserved(t *testing.T, productID uuid.UUID, storeID *uuid.UUID) {
	t.Helper()
	b, err := h.ledger.GetBalance(context.Background(), productID, storeID)
	require.NoError(t, err)
	assert.True(t, b.Conserved, "running total %d, latest %d", b.RunningTotal, b.LatestStock)
}

func domainCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

func TestTransferDispatchIsNotRepeated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	from, to := h.store(t, "North"), h.store(t, "South")
	product := h.product(t, "TR-1", map[uuid.UUID]int{from: 10})

	transfer, err := h.transfers.AddTransfer(ctx, appinventory.CreateTransferRequest{
		FromStoreID: from,
		ToStoreID:   to,
		Items:       []appinventory.TransferItemRequest{{ProductID: product, Quantity: 4}},
	}, shared.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "pending", transfer.Status)
	assert.Equal(t, 10, h.stock(t, product, &from), "creating a transfer moves nothing")

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		dispatched int
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.transfers.UpdateTransferStatus(ctx, transfer.ID,
				appinventory.UpdateTransferStatusRequest{Status: "in-transit"}, shared.Actor{UserName: "Driver"})
			if err == nil {
				mu.Lock()
				dispatched++
				mu.Unlock()
				return
			}
			assert.Equal(t, shared.CodeInvalidState, domainCode(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, dispatched)
	assert.Equal(t, 6, h.stock(t, product, &from))
	assert.Equal(t, 0, h.stock(t, product, &to))
	assert.Equal(t, 6, h.stock(t, product, nil), "units in transit belong to no store")
	h.conserved(t, product, nil)

	received, err := h.transfers.UpdateTransferStatus(ctx, transfer.ID,
		appinventory.UpdateTransferStatusRequest{Status: "received"}, shared.Actor{UserID: "u-9", UserName: "Clerk"})
	require.NoError(t, err)
	assert.Equal(t, "received", received.Status)
	require.NotNil(t, received.ReceivedByUserID)
	assert.Equal(t, "u-9", *received.ReceivedByUserID)

	assert.Equal(t, 6, h.stock(t, product, &from))
	assert.Equal(t, 4, h.stock(t, product, &to))
	assert.Equal(t, 10, h.stock(t, product, nil))
	h.conserved(t, product, &from)
	h.conserved(t, product, &to)
	h.conserved(t, product, nil)
}

func TestTransferDispatchFailsWhenSourceRanDry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	from, to := h.store(t, "East"), h.store(t, "West")
	product := h.product(t, "TR-2", map[uuid.UUID]int{from: 3})

	transfer, err := h.transfers.AddTransfer(ctx, appinventory.CreateTransferRequest{
		FromStoreID: from,
		ToStoreID:   to,
		Items:       []appinventory.TransferItemRequest{{ProductID: product, Quantity: 3}},
	}, shared.Actor{})
	require.NoError(t, err)

	_, err = h.adjustments.AddStockAdjustment(ctx, appinventory.CreateStockAdjustmentRequest{
		StoreID: from,
		Items: []appinventory.AdjustmentItemRequest{
			{ProductID: product, Quantity: 2, AdjustmentType: "Decrease", Reason: "Breakage"},
		},
	}, shared.Actor{})
	require.NoError(t, err)

	_, err = h.transfers.UpdateTransferStatus(ctx, transfer.ID,
		appinventory.UpdateTransferStatusRequest{Status: "in-transit"}, shared.Actor{})
	assert.Equal(t, shared.CodeInsufficientStock, domainCode(err))

	still, err := h.transfers.GetByID(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", still.Status)
	assert.Equal(t, 1, h.stock(t, product, &from))
	h.conserved(t, product, &from)
}

func TestTransferToSameStore(t *testing.T) {
	h := newHarness(t)
	store := h.store(t, "Solo")
	product := h.product(t, "TR-3", map[uuid.UUID]int{store: 1})

	_, err := h.transfers.AddTransfer(context.Background(), appinventory.CreateTransferRequest{
		FromStoreID: store,
		ToStoreID:   store,
		Items:       []appinventory.TransferItemRequest{{ProductID: product, Quantity: 1}},
	}, shared.Actor{})

	assert.Equal(t, shared.CodeValidationFailed, domainCode(err))
}

func TestAdjustmentIsAllOrNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.store(t, "Market")
	a := h.product(t, "ADJ-A", map[uuid.UUID]int{store: 5})
	b := h.product(t, "ADJ-B", map[uuid.UUID]int{store: 1})

	_, err := h.adjustments.AddStockAdjustment(ctx, appinventory.CreateStockAdjustmentRequest{
		StoreID: store,
		Items: []appinventory.AdjustmentItemRequest{
			{ProductID: a, Quantity: 3, AdjustmentType: "Increase"},
			{ProductID: b, Quantity: 2, AdjustmentType: "Decrease"},
		},
	}, shared.Actor{})
	assert.Equal(t, shared.CodeInsufficientStock, domainCode(err))
	assert.Equal(t, 5, h.stock(t, a, &store))
	assert.Equal(t, 1, h.stock(t, b, &store))

	adj, err := h.adjustments.AddStockAdjustment(ctx, appinventory.CreateStockAdjustmentRequest{
		StoreID: store,
		Items: []appinventory.AdjustmentItemRequest{
			{ProductID: a, Quantity: 3, AdjustmentType: "Increase", Reason: "Found in back room"},
			{ProductID: b, Quantity: 1, AdjustmentType: "Decrease"},
		},
	}, shared.Actor{UserID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, 8, h.stock(t, a, &store))
	assert.Equal(t, 0, h.stock(t, b, &store))

	entries, _, err := h.ledger.ListHistory(ctx, appinventory.HistoryListFilter{ReferenceID: &adj.ID, OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, string(inventory.HistoryTypeAdjustmentIn), entries[0].Type)
	assert.Equal(t, 3, entries[0].QuantityChange)
	assert.Equal(t, "Found in back room", entries[0].Description)
	assert.Equal(t, string(inventory.HistoryTypeAdjustmentOut), entries[1].Type)
	assert.Equal(t, -1, entries[1].QuantityChange)

	again, err := h.adjustments.ApproveStockAdjustment(ctx, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, h.stock(t, a, &store))
	require.NotNil(t, again.ApprovalDate)
	assert.WithinDuration(t, *adj.ApprovalDate, *again.ApprovalDate, time.Second)
	h.conserved(t, a, &store)
	h.conserved(t, b, &store)
}

func TestSetStockLevel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.store(t, "Corner")
	product := h.product(t, "SET-1", map[uuid.UUID]int{store: 2})

	level := func(n int) *int { return &n }
	moved, err := h.ledger.SetStockLevel(ctx, appinventory.SetStockLevelRequest{
		ProductID: product, StoreID: &store, Stock: level(7), Reason: "Recount",
	}, shared.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Previous)
	assert.Equal(t, 7, moved.Current)
	require.NotNil(t, moved.Entry)
	assert.Equal(t, 5, moved.Entry.QuantityChange)

	same, err := h.ledger.SetStockLevel(ctx, appinventory.SetStockLevelRequest{
		ProductID: product, StoreID: &store, Stock: level(7),
	}, shared.Actor{})
	require.NoError(t, err)
	assert.Nil(t, same.Entry)

	_, err = h.ledger.SetStockLevel(ctx, appinventory.SetStockLevelRequest{
		ProductID: product, Stock: level(1),
	}, shared.Actor{})
	assert.Equal(t, shared.CodeInvalidInput, domainCode(err), "per-store product needs a store")
	h.conserved(t, product, &store)
}
