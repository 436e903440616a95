package main

import (
	catalogapp "github.com/erp/pos/internal/application/catalog"
	financeapp "github.com/erp/pos/internal/application/finance"
	inventoryapp "github.com/erp/pos/internal/application/inventory"
	partnerapp "github.com/erp/pos/internal/application/partner"
	tradeapp "github.com/erp/pos/internal/application/trade"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// application holds the services behind the HTTP handlers
type application struct {
	db     *persistence.Database
	ledger *inventoryapp.StockLedger

	stores         *partnerapp.StoreService
	suppliers      *partnerapp.SupplierService
	products       *catalogapp.ProductService
	categories     *catalogapp.CategoryService
	ledgerService  *inventoryapp.LedgerService
	adjustments    *inventoryapp.AdjustmentService
	transfers      *inventoryapp.TransferService
	purchaseOrders *tradeapp.PurchaseOrderService
	grns           *tradeapp.GRNService
	sales          *tradeapp.SaleService
	finance        *financeapp.FinanceService
}

func newApplication(db *persistence.Database, log *zap.Logger) *application {
	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	adjustmentRepo := persistence.NewGormStockAdjustmentRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	grnRepo := persistence.NewGormGRNRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)

	// Every stock movement goes through one ledger inside a transaction scope
	txScope := persistence.NewGormTransactionScope(db.DB)
	ledger := inventoryapp.NewStockLedger(log.Named("ledger"))

	products := catalogapp.NewProductService(txScope, ledger, productRepo, categoryRepo, log.Named("catalog"))
	return &application{
		db:             db,
		ledger:         ledger,
		stores:         partnerapp.NewStoreService(storeRepo, log.Named("partner")),
		suppliers:      partnerapp.NewSupplierService(supplierRepo),
		products:       products,
		categories:     catalogapp.NewCategoryService(categoryRepo, products, log.Named("catalog")),
		ledgerService:  inventoryapp.NewLedgerService(txScope, ledger, historyRepo, log.Named("inventory")),
		adjustments:    inventoryapp.NewAdjustmentService(txScope, ledger, adjustmentRepo, log.Named("inventory")),
		transfers:      inventoryapp.NewTransferService(txScope, ledger, transferRepo, productRepo, storeRepo, log.Named("inventory")),
		purchaseOrders: tradeapp.NewPurchaseOrderService(purchaseOrderRepo, supplierRepo, productRepo, log.Named("trade")),
		grns:           tradeapp.NewGRNService(txScope, ledger, grnRepo, purchaseOrderRepo, supplierRepo, storeRepo, productRepo, log.Named("trade")),
		sales:          tradeapp.NewSaleService(txScope, ledger, saleRepo, log.Named("trade")),
		finance:        financeapp.NewFinanceService(journalRepo, log.Named("finance")),
	}
}

func (a *application) handlers(version string, maxImageSize int64) router.Handlers {
	return router.Handlers{
		System:        handler.NewSystemHandler(a.db, version),
		Store:         handler.NewStoreHandler(a.stores),
		Supplier:      handler.NewSupplierHandler(a.suppliers),
		Category:      handler.NewCategoryHandler(a.categories, a.products),
		Product:       handler.NewProductHandler(a.products, maxImageSize),
		Inventory:     handler.NewInventoryHandler(a.ledgerService),
		Adjustment:    handler.NewAdjustmentHandler(a.adjustments),
		Transfer:      handler.NewTransferHandler(a.transfers),
		PurchaseOrder: handler.NewPurchaseOrderHandler(a.purchaseOrders),
		GRN:           handler.NewGRNHandler(a.grns),
		Sale:          handler.NewSaleHandler(a.sales),
		Finance:       handler.NewFinanceHandler(a.finance),
	}
}
