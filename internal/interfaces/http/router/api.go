package router

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the API serves
type Handlers struct {
	System        *handler.SystemHandler
	Store         *handler.StoreHandler
	Supplier      *handler.SupplierHandler
	Category      *handler.CategoryHandler
	Product       *handler.ProductHandler
	Inventory     *handler.InventoryHandler
	Adjustment    *handler.AdjustmentHandler
	Transfer      *handler.TransferHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	GRN           *handler.GRNHandler
	Sale          *handler.SaleHandler
	Finance       *handler.FinanceHandler
}

// EngineConfig holds the cross-cutting settings of the HTTP engine
type EngineConfig struct {
	HTTP   config.HTTPConfig
	Logger *zap.Logger

	ServiceName    string
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	// Meter records HTTP server metrics; nil disables them
	Meter metric.Meter

	Verifier     *auth.TokenVerifier
	AuthRequired bool

	// IdempotencyStore backs the Idempotency-Key header on stock-moving
	// POSTs; nil disables replay protection
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine with the middleware stack and every API route
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	// Order matters: the request id must exist before anything logs, and the
	// span must be open before the request logger and metrics observe it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    cfg.ServiceName,
		Enabled:        cfg.TracingEnabled,
		TracerProvider: cfg.TracerProvider,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.Actor(middleware.ActorConfig{
			Verifier: cfg.Verifier,
			Required: cfg.AuthRequired,
			Logger:   log,
		}),
		middleware.SpanAnnotator(),
	)

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  cfg.IdempotencyStore,
		TTL:    cfg.IdempotencyTTL,
		Logger: log,
	})
	r.Register(domainGroups(h, idempotent)...)
	r.Setup()

	return engine, nil
}

// domainGroups lays out the API. Every POST that moves stock or posts to the
// journal accepts an Idempotency-Key.
func domainGroups(h Handlers, idempotent gin.HandlerFunc) []RouteRegistrar {
	var groups []RouteRegistrar

	if h.Store != nil {
		stores := NewDomainGroup("stores", "/stores")
		stores.POST("", h.Store.Create)
		stores.GET("", h.Store.List)
		stores.GET("/:id", h.Store.GetByID)
		stores.POST("/:id/deactivate", h.Store.Deactivate)
		groups = append(groups, stores)
	}

	if h.Supplier != nil {
		suppliers := NewDomainGroup("suppliers", "/suppliers")
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.GET("/:id", h.Supplier.GetByID)
		groups = append(groups, suppliers)
	}

	if h.Category != nil {
		categories := NewDomainGroup("categories", "/categories")
		categories.POST("", h.Category.Create)
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.GetByID)
		categories.DELETE("/:id", h.Category.Delete)
		categories.POST("/:id/reassign", h.Category.Reassign)
		groups = append(groups, categories)
	}

	if h.Product != nil {
		products := NewDomainGroup("products", "/products")
		products.POST("", idempotent, h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.GetByID)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.GET("/:id/stock", h.Product.Stock)
		products.POST("/:id/image", h.Product.UploadImage)
		groups = append(groups, products)
	}

	inventory := NewDomainGroup("inventory", "/inventory")
	if h.Inventory != nil {
		inventory.GET("/history", h.Inventory.History)
		inventory.GET("/balance", h.Inventory.Balance)
		inventory.POST("/stock-levels", idempotent, h.Inventory.SetStockLevel)
	}
	if h.Adjustment != nil {
		adjustments := inventory.Group("adjustments", "/adjustments")
		adjustments.POST("", idempotent, h.Adjustment.Create)
		adjustments.GET("", h.Adjustment.List)
		adjustments.GET("/:id", h.Adjustment.GetByID)
		adjustments.POST("/:id/approve", h.Adjustment.Approve)
	}
	if h.Transfer != nil {
		transfers := inventory.Group("transfers", "/transfers")
		transfers.POST("", idempotent, h.Transfer.Create)
		transfers.GET("", h.Transfer.List)
		transfers.GET("/:id", h.Transfer.GetByID)
		transfers.PATCH("/:id/status", h.Transfer.UpdateStatus)
	}
	groups = append(groups, inventory)

	if h.PurchaseOrder != nil {
		orders := NewDomainGroup("purchase-orders", "/purchase-orders")
		orders.POST("", idempotent, h.PurchaseOrder.Create)
		orders.GET("", h.PurchaseOrder.List)
		orders.GET("/:id", h.PurchaseOrder.GetByID)
		orders.POST("/:id/cancel", h.PurchaseOrder.Cancel)
		groups = append(groups, orders)
	}

	if h.GRN != nil {
		grns := NewDomainGroup("grns", "/grns")
		grns.POST("", idempotent, h.GRN.Create)
		grns.GET("", h.GRN.List)
		grns.GET("/:id", h.GRN.GetByID)
		grns.POST("/:id/approve", h.GRN.Approve)
		groups = append(groups, grns)
	}

	if h.Sale != nil {
		sales := NewDomainGroup("sales", "/sales")
		sales.POST("", idempotent, h.Sale.Finalize)
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.GetByID)
		sales.POST("/:id/refund", idempotent, h.Sale.Refund)
		sales.GET("/:id/refunds", h.Sale.Refunds)
		groups = append(groups, sales)
	}

	if h.Finance != nil {
		finance := NewDomainGroup("finance", "/finance")
		finance.POST("/payroll-payments", idempotent, h.Finance.RecordPayrollPayment)
		finance.GET("/journal", h.Finance.Journal)
		finance.GET("/trial-balance", h.Finance.TrialBalance)
		groups = append(groups, finance)
	}

	return groups
}
