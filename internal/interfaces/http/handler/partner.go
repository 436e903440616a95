package handler

import (
	partnerapp "github.com/erp/pos/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// StoreHandler handles store endpoints
type StoreHandler struct {
	BaseHandler
	storeService *partnerapp.StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService *partnerapp.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// Create registers a store
func (h *StoreHandler) Create(c *gin.Context) {
	var req partnerapp.CreateStoreRequest
	if !h.BindJSON(c, &req) {
		return
	}

	store, err := h.storeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, store)
}

// GetByID returns one store
func (h *StoreHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	store, err := h.storeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, store)
}

// List returns stores, optionally filtered by active flag or name
func (h *StoreHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := listFilter(q)
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	stores, total, err := h.storeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, stores, total, filter.Page, filter.PageSize)
}

// Deactivate closes a store for new stock movements
func (h *StoreHandler) Deactivate(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	store, err := h.storeService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, store)
}

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create registers a supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetByID returns one supplier
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List returns suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	q := newQuery(c)
	filter := listFilter(q)
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

func listFilter(q *query) partnerapp.ListFilter {
	return partnerapp.ListFilter{
		Search:   q.String("search"),
		Active:   q.Bool("active"),
		Page:     q.Int("page"),
		PageSize: q.Int("page_size"),
	}
}
