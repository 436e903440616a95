package router_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/erp/pos/internal/application/catalog"
	financeapp "github.com/erp/pos/internal/application/finance"
	inventoryapp "github.com/erp/pos/internal/application/inventory"
	partnerapp "github.com/erp/pos/internal/application/partner"
	tradeapp "github.com/erp/pos/internal/application/trade"
	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/cache"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/erp/pos/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// api drives the full HTTP stack against a migrated SQLite database
type api struct {
	t      *testing.T
	engine http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	gdb := db.DB

	productRepo := persistence.NewGormProductRepository(gdb)
	categoryRepo := persistence.NewGormCategoryRepository(gdb)
	storeRepo := persistence.NewGormStoreRepository(gdb)
	supplierRepo := persistence.NewGormSupplierRepository(gdb)
	orderRepo := persistence.NewGormPurchaseOrderRepository(gdb)
	txScope := persistence.NewGormTransactionScope(gdb)
	ledger := inventoryapp.NewStockLedger(nil)

	productService := catalogapp.NewProductService(txScope, ledger, productRepo, categoryRepo, nil)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productService, nil)

	store := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:             config.HTTPConfig{MaxBodySize: 1 << 20},
		IdempotencyStore: store,
	}, router.Handlers{
		System:   handler.NewSystemHandler(db, "test"),
		Store:    handler.NewStoreHandler(partnerapp.NewStoreService(storeRepo, nil)),
		Supplier: handler.NewSupplierHandler(partnerapp.NewSupplierService(supplierRepo)),
		Category: handler.NewCategoryHandler(categoryService, productService),
		Product:  handler.NewProductHandler(productService, 0),
		Inventory: handler.NewInventoryHandler(
			inventoryapp.NewLedgerService(txScope, ledger, persistence.NewGormHistoryRepository(gdb), nil)),
		Adjustment: handler.NewAdjustmentHandler(
			inventoryapp.NewAdjustmentService(txScope, ledger, persistence.NewGormStockAdjustmentRepository(gdb), nil)),
		Transfer: handler.NewTransferHandler(
			inventoryapp.NewTransferService(txScope, ledger, persistence.NewGormTransferRepository(gdb), productRepo, storeRepo, nil)),
		PurchaseOrder: handler.NewPurchaseOrderHandler(
			tradeapp.NewPurchaseOrderService(orderRepo, supplierRepo, productRepo, nil)),
		GRN: handler.NewGRNHandler(
			tradeapp.NewGRNService(txScope, ledger, persistence.NewGormGRNRepository(gdb), orderRepo, supplierRepo, storeRepo, productRepo, nil)),
		Sale: handler.NewSaleHandler(
			tradeapp.NewSaleService(txScope, ledger, persistence.NewGormSaleRepository(gdb), nil)),
		Finance: handler.NewFinanceHandler(
			financeapp.NewFinanceService(persistence.NewGormJournalRepository(gdb), nil)),
	})
	require.NoError(t, err)

	return &api{t: t, engine: engine}
}

func (a *api) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	h := map[string]string{}
	for i := 0; i+1 < len(headers); i += 2 {
		h[headers[i]] = headers[i+1]
	}
	return testutil.PerformRequest(a.t, a.engine, method, "/api/v1"+path, body, h)
}

func expectData[T any](a *api, w *httptest.ResponseRecorder, status int) T {
	a.t.Helper()
	require.Equal(a.t, status, w.Code, w.Body.String())
	return testutil.DecodeData[T](a.t, w)
}

func (a *api) createStore(name string) uuid.UUID {
	a.t.Helper()
	w := a.do(http.MethodPost, "/stores", map[string]any{"name": name})
	return expectData[partnerapp.StoreResponse](a, w, http.StatusCreated).ID
}

func (a *api) createSupplier(name string) uuid.UUID {
	a.t.Helper()
	w := a.do(http.MethodPost, "/suppliers", map[string]any{"name": name})
	return expectData[partnerapp.SupplierResponse](a, w, http.StatusCreated).ID
}

func (a *api) createProduct(sku string, stockByStore map[uuid.UUID]int) uuid.UUID {
	a.t.Helper()
	w := a.do(http.MethodPost, "/products", map[string]any{
		"name":           "Product " + sku,
		"sku":            sku,
		"price":          "2.50",
		"cost":           "1.00",
		"stock_by_store": stockByStore,
	})
	return expectData[catalogapp.ProductResponse](a, w, http.StatusCreated).ID
}

func (a *api) product(id uuid.UUID) catalogapp.ProductResponse {
	a.t.Helper()
	return expectData[catalogapp.ProductResponse](a, a.do(http.MethodGet, "/products/"+id.String(), nil), http.StatusOK)
}

func (a *api) history(query string) []inventoryapp.HistoryEntryResponse {
	a.t.Helper()
	w := a.do(http.MethodGet, "/inventory/history?order_dir=asc&page_size=100&"+query, nil)
	return expectData[[]inventoryapp.HistoryEntryResponse](a, w, http.StatusOK)
}

func (a *api) setTransferStatus(id uuid.UUID, status string) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodPatch, "/inventory/transfers/"+id.String()+"/status", map[string]any{"status": status})
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeData[handler.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestTransferLifecycle(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	s2 := a.createStore("South")
	p := a.createProduct("TOG-1", map[uuid.UUID]int{s1: 10, s2: 0})

	w := a.do(http.MethodPost, "/inventory/transfers", map[string]any{
		"from_store_id": s1,
		"to_store_id":   s2,
		"items":         []map[string]any{{"product_id": p, "quantity": 4}},
	})
	transfer := expectData[inventoryapp.TransferResponse](a, w, http.StatusCreated)
	assert.Equal(t, "pending", transfer.Status)
	assert.Equal(t, map[uuid.UUID]int{s1: 10, s2: 0}, a.product(p).StockByStore, "pending moves nothing")

	expectData[inventoryapp.TransferResponse](a, a.setTransferStatus(transfer.ID, "in-transit"), http.StatusOK)
	product := a.product(p)
	assert.Equal(t, map[uuid.UUID]int{s1: 6, s2: 0}, product.StockByStore)
	assert.Equal(t, 6, product.Stock, "units in transit belong to no store")

	received := expectData[inventoryapp.TransferResponse](a, a.setTransferStatus(transfer.ID, "received"), http.StatusOK)
	assert.Equal(t, "received", received.Status)
	product = a.product(p)
	assert.Equal(t, map[uuid.UUID]int{s1: 6, s2: 4}, product.StockByStore)
	assert.Equal(t, 10, product.Stock)

	entries := a.history("reference_id=" + transfer.ID.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "TOG_OUT", entries[0].Type)
	assert.Equal(t, -4, entries[0].QuantityChange)
	assert.Equal(t, 6, entries[0].CurrentStock)
	assert.Equal(t, "TOG_IN", entries[1].Type)
	assert.Equal(t, 4, entries[1].QuantityChange)
	assert.Equal(t, 4, entries[1].CurrentStock)

	w = a.do(http.MethodGet, "/inventory/balance?product_id="+p.String(), nil)
	whole := expectData[inventoryapp.BalanceResponse](a, w, http.StatusOK)
	assert.Equal(t, 10, whole.LatestStock)
	assert.True(t, whole.Conserved)

	t.Run("terminal status cannot move", func(t *testing.T) {
		for _, status := range []string{"pending", "in-transit", "rejected", "received"} {
			testutil.AssertErrorCode(t, a.setTransferStatus(transfer.ID, status), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
		}
		assert.Equal(t, map[uuid.UUID]int{s1: 6, s2: 4}, a.product(p).StockByStore)
	})
}

func TestTransferRejection(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	s2 := a.createStore("South")
	p := a.createProduct("TOG-2", map[uuid.UUID]int{s1: 8, s2: 1})

	newTransfer := func() uuid.UUID {
		w := a.do(http.MethodPost, "/inventory/transfers", map[string]any{
			"from_store_id": s1,
			"to_store_id":   s2,
			"items":         []map[string]any{{"product_id": p, "quantity": 3}},
		})
		return expectData[inventoryapp.TransferResponse](a, w, http.StatusCreated).ID
	}

	t.Run("pending rejection moves nothing", func(t *testing.T) {
		id := newTransfer()
		w := a.do(http.MethodPatch, "/inventory/transfers/"+id.String()+"/status",
			map[string]any{"status": "rejected", "reason": "wrong store"})
		rejected := expectData[inventoryapp.TransferResponse](a, w, http.StatusOK)
		assert.Equal(t, "rejected", rejected.Status)
		assert.Equal(t, "wrong store", rejected.RejectionReason)
		assert.Equal(t, map[uuid.UUID]int{s1: 8, s2: 1}, a.product(p).StockByStore)
		assert.Empty(t, a.history("reference_id="+id.String()))
	})

	t.Run("in-transit rejection restores the source", func(t *testing.T) {
		id := newTransfer()
		expectData[inventoryapp.TransferResponse](a, a.setTransferStatus(id, "in-transit"), http.StatusOK)
		assert.Equal(t, 5, a.product(p).StockByStore[s1])

		expectData[inventoryapp.TransferResponse](a, a.setTransferStatus(id, "rejected"), http.StatusOK)
		assert.Equal(t, map[uuid.UUID]int{s1: 8, s2: 1}, a.product(p).StockByStore)

		entries := a.history("reference_id=" + id.String())
		require.Len(t, entries, 2)
		assert.Equal(t, 0, entries[0].QuantityChange+entries[1].QuantityChange)
	})

	t.Run("pending cannot be received directly", func(t *testing.T) {
		id := newTransfer()
		testutil.AssertErrorCode(t, a.setTransferStatus(id, "received"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
		assert.Equal(t, map[uuid.UUID]int{s1: 8, s2: 1}, a.product(p).StockByStore)
	})

	t.Run("unknown status is a bad input", func(t *testing.T) {
		id := newTransfer()
		testutil.AssertErrorCode(t, a.setTransferStatus(id, "lost"), http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("oversized transfer is refused", func(t *testing.T) {
		w := a.do(http.MethodPost, "/inventory/transfers", map[string]any{
			"from_store_id": s1,
			"to_store_id":   s2,
			"items":         []map[string]any{{"product_id": p, "quantity": 99}},
		})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)
	})
}

func TestGoodsReceivedAgainstPurchaseOrder(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	supplier := a.createSupplier("Acme")
	p := a.createProduct("GRN-1", map[uuid.UUID]int{s1: 0})

	w := a.do(http.MethodPost, "/purchase-orders", map[string]any{
		"reference_no": "PO-1",
		"supplier_id":  supplier,
		"items":        []map[string]any{{"product_id": p, "quantity": 5, "unit_cost": "1.20"}},
	})
	order := expectData[tradeapp.PurchaseOrderResponse](a, w, http.StatusCreated)
	assert.Equal(t, "pending", order.Status)

	w = a.do(http.MethodPost, "/grns", map[string]any{
		"reference_no":       "GRN-1",
		"purchase_order_id":  order.ID,
		"receiving_store_id": s1,
		"items":              []map[string]any{{"product_id": p, "quantity_received": 5}},
	})
	grn := expectData[tradeapp.GRNResponse](a, w, http.StatusCreated)
	assert.Equal(t, "pending", grn.Status)
	assert.Equal(t, supplier, grn.SupplierID)
	assert.Equal(t, 0, a.product(p).StockByStore[s1], "pending GRN moves nothing")

	approved := expectData[tradeapp.GRNResponse](a, a.do(http.MethodPost, "/grns/"+grn.ID.String()+"/approve", nil), http.StatusOK)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, map[uuid.UUID]int{s1: 5}, a.product(p).StockByStore)

	entries := a.history("type=GRN&product_id=" + p.String())
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].QuantityChange)
	assert.Equal(t, 5, entries[0].CurrentStock)
	assert.Equal(t, grn.ID, entries[0].ReferenceID)

	order = expectData[tradeapp.PurchaseOrderResponse](a, a.do(http.MethodGet, "/purchase-orders/"+order.ID.String(), nil), http.StatusOK)
	assert.Equal(t, "completed", order.Status)

	t.Run("second approval is refused", func(t *testing.T) {
		w := a.do(http.MethodPost, "/grns/"+grn.ID.String()+"/approve", nil)
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
		assert.Equal(t, map[uuid.UUID]int{s1: 5}, a.product(p).StockByStore)
		assert.Len(t, a.history("type=GRN&product_id="+p.String()), 1)
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		w := a.do(http.MethodPost, "/purchase-orders/"+order.ID.String()+"/cancel", map[string]any{"reason": "late"})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	t.Run("duplicate reference is a conflict", func(t *testing.T) {
		w := a.do(http.MethodPost, "/grns", map[string]any{
			"reference_no":       "GRN-1",
			"supplier_id":        supplier,
			"receiving_store_id": s1,
			"items":              []map[string]any{{"product_id": p, "quantity_received": 1}},
		})
		testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists)
	})
}

func TestStockAdjustment(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	p := a.createProduct("SA-1", map[uuid.UUID]int{s1: 20})

	w := a.do(http.MethodPost, "/inventory/adjustments", map[string]any{
		"store_id": s1,
		"items": []map[string]any{
			{"product_id": p, "quantity": 7, "adjustment_type": "Decrease", "reason": "breakage"},
		},
	})
	adjustment := expectData[inventoryapp.StockAdjustmentResponse](a, w, http.StatusCreated)
	assert.NotNil(t, adjustment.ApprovalDate, "adjustments are applied on creation")
	assert.Equal(t, 13, a.product(p).StockByStore[s1])

	entries := a.history("type=SA_DECREASE&product_id=" + p.String())
	require.Len(t, entries, 1)
	assert.Equal(t, -7, entries[0].QuantityChange)
	assert.Equal(t, 13, entries[0].CurrentStock)

	t.Run("approval moves nothing", func(t *testing.T) {
		w := a.do(http.MethodPost, "/inventory/adjustments/"+adjustment.ID.String()+"/approve", nil)
		expectData[inventoryapp.StockAdjustmentResponse](a, w, http.StatusOK)
		assert.Equal(t, 13, a.product(p).StockByStore[s1])
		assert.Len(t, a.history("product_id="+p.String()), 2)
	})

	t.Run("decrease below zero is refused", func(t *testing.T) {
		w := a.do(http.MethodPost, "/inventory/adjustments", map[string]any{
			"store_id": s1,
			"items":    []map[string]any{{"product_id": p, "quantity": 14, "adjustment_type": "Decrease"}},
		})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)
		assert.Equal(t, 13, a.product(p).StockByStore[s1])
	})

	t.Run("unknown adjustment type fails binding", func(t *testing.T) {
		w := a.do(http.MethodPost, "/inventory/adjustments", map[string]any{
			"store_id": s1,
			"items":    []map[string]any{{"product_id": p, "quantity": 1, "adjustment_type": "Sideways"}},
		})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}

func TestSaleAndRefund(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	p := a.createProduct("SALE-1", map[uuid.UUID]int{s1: 10})

	saleBody := map[string]any{
		"store_id":       s1,
		"payment_method": "cash",
		"items":          []map[string]any{{"product_id": p, "quantity": 3}},
	}
	w := a.do(http.MethodPost, "/sales", saleBody, middleware.IdempotencyKeyHeader, "till-1-0001")
	sale := expectData[tradeapp.SaleResponse](a, w, http.StatusCreated)
	assert.True(t, decimal.RequireFromString("7.50").Equal(sale.Total), "total %s", sale.Total)
	assert.Equal(t, 7, a.product(p).StockByStore[s1])

	t.Run("retried checkout is replayed", func(t *testing.T) {
		w := a.do(http.MethodPost, "/sales", saleBody, middleware.IdempotencyKeyHeader, "till-1-0001")
		replayed := expectData[tradeapp.SaleResponse](a, w, http.StatusCreated)
		assert.Equal(t, "true", w.Header().Get(middleware.IdempotencyReplayedHeader))
		assert.Equal(t, sale.ID, replayed.ID)
		assert.Equal(t, 7, a.product(p).StockByStore[s1], "stock is taken once")
	})

	w = a.do(http.MethodPost, "/sales/"+sale.ID.String()+"/refund", map[string]any{
		"items":  []map[string]any{{"product_id": p, "quantity": 3}},
		"reason": "changed mind",
	})
	refund := expectData[tradeapp.RefundResponse](a, w, http.StatusCreated)
	assert.True(t, sale.Total.Equal(refund.Amount))
	require.NotNil(t, refund.Sale)
	assert.Equal(t, "refunded", refund.Sale.Status)
	assert.Equal(t, 10, a.product(p).StockByStore[s1])

	entries := a.history("reference_id=" + sale.ID.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "SALE", entries[0].Type)
	assert.Equal(t, "REFUND", entries[1].Type)
	assert.Zero(t, entries[0].QuantityChange+entries[1].QuantityChange)

	refunds := expectData[[]tradeapp.RefundResponse](a, a.do(http.MethodGet, "/sales/"+sale.ID.String()+"/refunds", nil), http.StatusOK)
	assert.Len(t, refunds, 1)

	t.Run("fully refunded sale refuses more refunds", func(t *testing.T) {
		w := a.do(http.MethodPost, "/sales/"+sale.ID.String()+"/refund", map[string]any{
			"items": []map[string]any{{"product_id": p, "quantity": 1}},
		})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	t.Run("journal stays balanced", func(t *testing.T) {
		tb := expectData[finance.TrialBalance](a, a.do(http.MethodGet, "/finance/trial-balance", nil), http.StatusOK)
		assert.Equal(t, finance.TrialBalanceStatusBalanced, tb.Status)
		assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

		w := a.do(http.MethodGet, "/finance/journal?reference_id="+sale.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
	})
}

func TestSaleValidation(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	p := a.createProduct("SALE-2", map[uuid.UUID]int{s1: 2})

	t.Run("no store selected", func(t *testing.T) {
		w := a.do(http.MethodPost, "/sales", map[string]any{
			"items": []map[string]any{{"product_id": p, "quantity": 1}},
		})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeValidationFailed)
	})

	t.Run("more than on hand", func(t *testing.T) {
		w := a.do(http.MethodPost, "/sales", map[string]any{
			"store_id": s1,
			"items":    []map[string]any{{"product_id": p, "quantity": 3}},
		})
		testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)
		assert.Equal(t, 2, a.product(p).StockByStore[s1])
	})

	t.Run("empty cart fails binding", func(t *testing.T) {
		w := a.do(http.MethodPost, "/sales", map[string]any{"store_id": s1, "items": []any{}})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("unknown sale", func(t *testing.T) {
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/sales/"+uuid.NewString(), nil), http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/sales/not-a-uuid", nil), http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("malformed date filter", func(t *testing.T) {
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/sales?date_from=yesterday", nil), http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}

func TestStockLevelsAndBalance(t *testing.T) {
	a := newAPI(t)
	s1 := a.createStore("North")
	p := a.createProduct("LVL-1", map[uuid.UUID]int{s1: 4})

	set := func(stock int) inventoryapp.StockMovementResponse {
		t.Helper()
		w := a.do(http.MethodPost, "/inventory/stock-levels", map[string]any{
			"product_id": p,
			"store_id":   s1,
			"stock":      stock,
		})
		return expectData[inventoryapp.StockMovementResponse](a, w, http.StatusOK)
	}

	moved := set(9)
	assert.Equal(t, 4, moved.Previous)
	assert.Equal(t, 9, moved.Current)
	require.NotNil(t, moved.Entry)
	assert.Equal(t, 5, moved.Entry.QuantityChange)

	unchanged := set(9)
	assert.Nil(t, unchanged.Entry, "zero delta records nothing")
	assert.Len(t, a.history("product_id="+p.String()), 2)

	set(1)
	w := a.do(http.MethodGet, fmt.Sprintf("/inventory/balance?product_id=%s&store_id=%s", p, s1), nil)
	balance := expectData[inventoryapp.BalanceResponse](a, w, http.StatusOK)
	assert.Equal(t, 1, balance.RunningTotal)
	assert.Equal(t, 1, balance.LatestStock)
	assert.True(t, balance.Conserved)

	stock := expectData[catalogapp.EffectiveStockResponse](a, a.do(http.MethodGet, "/products/"+p.String()+"/stock?store_id="+s1.String(), nil), http.StatusOK)
	assert.Equal(t, 1, stock.Stock)

	testutil.AssertErrorCode(t, a.do(http.MethodGet, "/inventory/balance", nil), http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestProductCatalog(t *testing.T) {
	a := newAPI(t)

	t.Run("invalid SKU is rejected at binding", func(t *testing.T) {
		w := a.do(http.MethodPost, "/products", map[string]any{"name": "Bad", "sku": "has space"})
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("duplicate SKU conflicts", func(t *testing.T) {
		body := map[string]any{"name": "Tea", "sku": "TEA-1", "stock": 3}
		expectData[catalogapp.ProductResponse](a, a.do(http.MethodPost, "/products", body), http.StatusCreated)
		testutil.AssertErrorCode(t, a.do(http.MethodPost, "/products", body), http.StatusConflict, dto.ErrCodeAlreadyExists)
	})

	t.Run("category reassignment", func(t *testing.T) {
		w := a.do(http.MethodPost, "/categories", map[string]any{"name": "Drinks"})
		drinks := expectData[catalogapp.CategoryResponse](a, w, http.StatusCreated)
		w = a.do(http.MethodPost, "/categories", map[string]any{"name": "Beverages"})
		beverages := expectData[catalogapp.CategoryResponse](a, w, http.StatusCreated)

		w = a.do(http.MethodPost, "/products", map[string]any{"name": "Cola", "sku": "COLA-1", "category_id": drinks.ID})
		cola := expectData[catalogapp.ProductResponse](a, w, http.StatusCreated)

		w = a.do(http.MethodPost, "/categories/"+drinks.ID.String()+"/reassign", map[string]any{"new_category_id": beverages.ID})
		moved := expectData[catalogapp.ReassignCategoryResponse](a, w, http.StatusOK)
		assert.Equal(t, int64(1), moved.Reassigned)
		require.NotNil(t, a.product(cola.ID).CategoryID)
		assert.Equal(t, beverages.ID, *a.product(cola.ID).CategoryID)

		w = a.do(http.MethodDelete, "/categories/"+drinks.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/categories/"+drinks.ID.String(), nil), http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("list is paginated", func(t *testing.T) {
		w := a.do(http.MethodGet, "/products?page=1&page_size=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 1, env.Meta.PageSize)
		assert.GreaterOrEqual(t, env.Meta.Total, int64(2))
	})

	t.Run("page size is bounded", func(t *testing.T) {
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/products?page_size=1000", nil), http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("deleting a product closes its stock", func(t *testing.T) {
		w := a.do(http.MethodPost, "/products", map[string]any{"name": "Gone", "sku": "GONE-1", "stock": 6})
		gone := expectData[catalogapp.ProductResponse](a, w, http.StatusCreated)

		assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/products/"+gone.ID.String(), nil).Code)
		testutil.AssertErrorCode(t, a.do(http.MethodGet, "/products/"+gone.ID.String(), nil), http.StatusNotFound, dto.ErrCodeNotFound)

		entries := a.history("type=PRODUCT_DELETED&product_id=" + gone.ID.String())
		require.Len(t, entries, 1)
		assert.Equal(t, -6, entries[0].QuantityChange)
		assert.Equal(t, 0, entries[0].CurrentStock)
	})
}

func TestEngineWithRequiredToken(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: "test-secret", Issuer: "pos"})

	engine, err := router.NewEngine(router.EngineConfig{
		Verifier:     verifier,
		AuthRequired: true,
	}, router.Handlers{
		System: handler.NewSystemHandler(db, "test"),
		Store:  handler.NewStoreHandler(partnerapp.NewStoreService(storeRepo, nil)),
	})
	require.NoError(t, err)

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stores", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)

	w = testutil.PerformRequest(t, engine, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")

	token, err := verifier.Sign(shared.Actor{UserID: "u-1", UserName: "Ana"}, time.Minute)
	require.NoError(t, err)
	w = testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stores", nil,
		map[string]string{middleware.AuthHeaderKey: middleware.BearerPrefix + token})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
