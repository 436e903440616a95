package handler

import (
	tradeapp "github.com/erp/pos/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// Create places a purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID returns one purchase order
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List returns purchase orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := tradeapp.PurchaseOrderListFilter{
		Status:     q.String("status"),
		SupplierID: q.UUID("supplier_id"),
		Search:     q.String("search"),
		Page:       q.Int("page"),
		PageSize:   q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Cancel cancels a pending purchase order
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelPurchaseOrderRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GRNHandler handles goods received note endpoints
type GRNHandler struct {
	BaseHandler
	grnService *tradeapp.GRNService
}

// NewGRNHandler creates a new GRNHandler
func NewGRNHandler(grnService *tradeapp.GRNService) *GRNHandler {
	return &GRNHandler{grnService: grnService}
}

// Create records a pending GRN
func (h *GRNHandler) Create(c *gin.Context) {
	var req tradeapp.CreateGRNRequest
	if !h.BindJSON(c, &req) {
		return
	}

	grn, err := h.grnService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, grn)
}

// Approve books the received goods into stock. A GRN is approved at most once.
func (h *GRNHandler) Approve(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	grn, err := h.grnService.ApproveGRN(c.Request.Context(), id, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grn)
}

// GetByID returns one GRN
func (h *GRNHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	grn, err := h.grnService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grn)
}

// List returns GRNs
func (h *GRNHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := tradeapp.GRNListFilter{
		Status:          q.String("status"),
		PurchaseOrderID: q.UUID("purchase_order_id"),
		StoreID:         q.UUID("store_id"),
		Page:            q.Int("page"),
		PageSize:        q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	grns, total, err := h.grnService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, grns, total, filter.Page, filter.PageSize)
}

// SaleHandler handles point-of-sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Finalize completes a checkout: stock is decremented and the sale is posted
func (h *SaleHandler) Finalize(c *gin.Context) {
	var req tradeapp.FinalizeSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.FinalizeSale(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Refund returns items of a sale to stock
func (h *SaleHandler) Refund(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RefundSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	refund, err := h.saleService.RefundSale(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, refund)
}

// GetByID returns one sale
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Refunds lists the refunds of a sale
func (h *SaleHandler) Refunds(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	refunds, err := h.saleService.ListRefunds(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, refunds)
}

// List returns sales
func (h *SaleHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := tradeapp.SaleListFilter{
		StoreID:  q.UUID("store_id"),
		Status:   q.String("status"),
		DateFrom: q.Date("date_from"),
		DateTo:   q.Date("date_to"),
		Page:     q.Int("page"),
		PageSize: q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}
