package handler

import (
	financeapp "github.com/erp/pos/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// FinanceHandler handles journal endpoints
type FinanceHandler struct {
	BaseHandler
	financeService *financeapp.FinanceService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(financeService *financeapp.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

// RecordPayrollPayment posts a cash salary payment
func (h *FinanceHandler) RecordPayrollPayment(c *gin.Context) {
	var req financeapp.RecordPayrollPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.financeService.RecordPayrollPayment(c.Request.Context(), req, h.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Journal lists journal entries
func (h *FinanceHandler) Journal(c *gin.Context) {
	q := newQuery(c)
	filter := financeapp.JournalListFilter{
		ReferenceType: q.String("reference_type"),
		ReferenceID:   q.UUID("reference_id"),
		Page:          q.Int("page"),
		PageSize:      q.Int("page_size"),
	}
	if !q.ok(&h.BaseHandler) || !h.Validate(c, &filter) {
		return
	}

	entries, total, err := h.financeService.ListJournal(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// TrialBalance sums debits and credits per account
func (h *FinanceHandler) TrialBalance(c *gin.Context) {
	balance, err := h.financeService.TrialBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
