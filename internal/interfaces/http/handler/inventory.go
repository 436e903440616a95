package handler

import (
	inventoryapp "github.com/erp/pos/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes the stock ledger: history, balances and direct stock levels
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// History lists inventory history entries
func (h *InventoryHandler) History(c *gin.Context) {
	q := newQuery(c)
	filter := inventoryapp.HistoryListFilter{
		ProductID:   q.UUID("product_id"),
		StoreID:     q.UUID("store_id"),
		ReferenceID: q.UUID("reference_id"),
		Type:        q.String("type"),
		Page:        q.Int("page"),
		PageSize:    q.Int("page_size"),
		OrderDir:    q.String("order_dir"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	entries, total, err := h.ledgerService.ListHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Balance reports the running total of a product's history next to its latest snapshot
func (h *InventoryHandler) Balance(c *gin.Context) {
	q := newQuery(c)
	productID := q.UUID("product_id")
	storeID := q.UUID("store_id")
	if !q.ok(&h.BaseHandler) {
		return
	}
	if productID == nil {
		h.BadRequest(c, "product_id is required")
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), *productID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// SetStockLevel sets an absolute stock level and records the difference
func (h *InventoryHandler) SetStockLevel(c *gin.Context) {
	var req inventoryapp.SetStockLevelRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.ledgerService.SetStockLevel(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// AdjustmentHandler handles stock adjustment endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *inventoryapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *inventoryapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

// Create applies and records a stock adjustment
func (h *AdjustmentHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	adjustment, err := h.adjustmentService.AddStockAdjustment(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, adjustment)
}

// Approve acknowledges an adjustment. Stock was already moved on create.
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.ApproveStockAdjustment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, adjustment)
}

// GetByID returns one adjustment
func (h *AdjustmentHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, adjustment)
}

// List returns adjustments
func (h *AdjustmentHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := inventoryapp.AdjustmentListFilter{
		StoreID:  q.UUID("store_id"),
		Page:     q.Int("page"),
		PageSize: q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	adjustments, total, err := h.adjustmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, adjustments, total, filter.Page, filter.PageSize)
}

// TransferHandler handles inter-store transfer endpoints
type TransferHandler struct {
	BaseHandler
	transferService *inventoryapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *inventoryapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Create opens a pending transfer
func (h *TransferHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.AddTransfer(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// UpdateStatus moves a transfer to its next status
func (h *TransferHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateTransferStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.UpdateTransferStatus(c.Request.Context(), id, req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// GetByID returns one transfer
func (h *TransferHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transferService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// List returns transfers, filtered by status or either endpoint store
func (h *TransferHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := inventoryapp.TransferListFilter{
		Status:   q.String("status"),
		StoreID:  q.UUID("store_id"),
		Page:     q.Int("page"),
		PageSize: q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	transfers, total, err := h.transferService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, filter.Page, filter.PageSize)
}
