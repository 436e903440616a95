package finance

import (
	"time"

	"github.com/erp/pos/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPayrollPaymentRequest records salary paid out in cash
type RecordPayrollPaymentRequest struct {
	EmployeeName string          `json:"employee_name" binding:"required,min=1,max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate  *time.Time      `json:"payment_date"`
	PeriodLabel  string          `json:"period_label" binding:"max=50"`
}

// JournalLineResponse is one side of a posting
type JournalLineResponse struct {
	Account     string          `json:"account"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID            uuid.UUID             `json:"id"`
	EntryDate     time.Time             `json:"entry_date"`
	ReferenceType string                `json:"reference_type"`
	ReferenceID   uuid.UUID             `json:"reference_id"`
	Description   string                `json:"description"`
	Lines         []JournalLineResponse `json:"lines"`
	Total         decimal.Decimal       `json:"total"`
	CreatedBy     *string               `json:"created_by,omitempty"`
}

// JournalListFilter represents filter options for the journal
type JournalListFilter struct {
	ReferenceType string     `form:"reference_type" binding:"omitempty,oneof=SALE REFUND GRN PAYROLL"`
	ReferenceID   *uuid.UUID `form:"reference_id"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToJournalEntryResponse converts a domain JournalEntry to a response
func ToJournalEntryResponse(e *finance.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			Account:     string(l.Account),
			AccountName: l.Account.Name(),
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return JournalEntryResponse{
		ID:            e.ID,
		EntryDate:     e.EntryDate,
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		Lines:         lines,
		Total:         e.Total(),
		CreatedBy:     e.CreatedBy,
	}
}
