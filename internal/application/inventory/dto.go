package inventory

import (
	"time"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// HistoryEntryResponse represents one inventory history line in API responses
type HistoryEntryResponse struct {
	ID             uuid.UUID  `json:"id"`
	Sequence       int64      `json:"sequence"`
	Date           time.Time  `json:"date"`
	Type           string     `json:"type"`
	ReferenceID    uuid.UUID  `json:"reference_id"`
	Description    string     `json:"description"`
	ProductID      uuid.UUID  `json:"product_id"`
	ProductName    string     `json:"product_name"`
	QuantityChange int        `json:"quantity_change"`
	CurrentStock   int        `json:"current_stock"`
	StoreID        *uuid.UUID `json:"store_id,omitempty"`
	UserID         *string    `json:"user_id,omitempty"`
	UserName       string     `json:"user_name,omitempty"`
}

// HistoryListFilter represents filter options for the history log
type HistoryListFilter struct {
	ProductID   *uuid.UUID `form:"product_id"`
	StoreID     *uuid.UUID `form:"store_id"`
	ReferenceID *uuid.UUID `form:"reference_id"`
	Type        string     `form:"type"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BalanceResponse is the ledger view of one scope
type BalanceResponse struct {
	ProductID    uuid.UUID  `json:"product_id"`
	StoreID      *uuid.UUID `json:"store_id,omitempty"`
	RunningTotal int        `json:"running_total"`
	LatestStock  int        `json:"latest_stock"`
	EntryCount   int64      `json:"entry_count"`
	Conserved    bool       `json:"conserved"`
}

// SetStockLevelRequest sets the absolute stock of a product in a store scope
type SetStockLevelRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	StoreID   *uuid.UUID `json:"store_id"`
	Stock     *int       `json:"stock" binding:"required,min=0"`
	Reason    string     `json:"reason" binding:"max=255"`
}

// StockMovementResponse reports the outcome of a ledger call
type StockMovementResponse struct {
	ProductID uuid.UUID             `json:"product_id"`
	StoreID   *uuid.UUID            `json:"store_id,omitempty"`
	Previous  int                   `json:"previous"`
	Current   int                   `json:"current"`
	Total     int                   `json:"total_stock"`
	Entry     *HistoryEntryResponse `json:"entry,omitempty"`
}

// AdjustmentItemRequest is one line of a stock adjustment request
type AdjustmentItemRequest struct {
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
	AdjustmentType string    `json:"adjustment_type" binding:"required,oneof=Increase Decrease"`
	Reason         string    `json:"reason" binding:"max=255"`
}

// CreateStockAdjustmentRequest creates and applies a stock adjustment
type CreateStockAdjustmentRequest struct {
	StoreID        uuid.UUID               `json:"store_id" binding:"required"`
	AdjustmentDate *time.Time              `json:"adjustment_date"`
	Items          []AdjustmentItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes          string                  `json:"notes" binding:"max=500"`
}

// AdjustmentItemResponse is one line of a stock adjustment
type AdjustmentItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	AdjustmentType string    `json:"adjustment_type"`
	Reason         string    `json:"reason,omitempty"`
}

// StockAdjustmentResponse represents a stock adjustment in API responses
type StockAdjustmentResponse struct {
	ID                 uuid.UUID                `json:"id"`
	AdjustmentDate     time.Time                `json:"adjustment_date"`
	StoreID            uuid.UUID                `json:"store_id"`
	StoreName          string                   `json:"store_name"`
	Items              []AdjustmentItemResponse `json:"items"`
	Notes              string                   `json:"notes,omitempty"`
	ApprovedByUserID   *string                  `json:"approved_by_user_id,omitempty"`
	ApprovedByUserName string                   `json:"approved_by_user_name,omitempty"`
	ApprovalDate       *time.Time               `json:"approval_date,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
}

// AdjustmentListFilter represents filter options for stock adjustments
type AdjustmentListFilter struct {
	StoreID  *uuid.UUID `form:"store_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransferItemRequest is one line of a transfer request
type TransferItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CreateTransferRequest creates a pending transfer
type CreateTransferRequest struct {
	FromStoreID  uuid.UUID             `json:"from_store_id" binding:"required"`
	ToStoreID    uuid.UUID             `json:"to_store_id" binding:"required"`
	TransferDate *time.Time            `json:"transfer_date"`
	Items        []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes        string                `json:"notes" binding:"max=500"`
}

// UpdateTransferStatusRequest moves a transfer through its lifecycle
type UpdateTransferStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=255"`
}

// TransferItemResponse is one line of a transfer
type TransferItemResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
}

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID               uuid.UUID              `json:"id"`
	TransferDate     time.Time              `json:"transfer_date"`
	FromStoreID      uuid.UUID              `json:"from_store_id"`
	FromStoreName    string                 `json:"from_store_name"`
	ToStoreID        uuid.UUID              `json:"to_store_id"`
	ToStoreName      string                 `json:"to_store_name"`
	Items            []TransferItemResponse `json:"items"`
	Status           string                 `json:"status"`
	Notes            string                 `json:"notes,omitempty"`
	DispatchedByName string                 `json:"dispatched_by_name,omitempty"`
	DispatchedAt     *time.Time             `json:"dispatched_at,omitempty"`
	ReceivedByUserID *string                `json:"received_by_user_id,omitempty"`
	ReceivedByName   string                 `json:"received_by_name,omitempty"`
	ReceivedAt       *time.Time             `json:"received_at,omitempty"`
	RejectedByName   string                 `json:"rejected_by_name,omitempty"`
	RejectedAt       *time.Time             `json:"rejected_at,omitempty"`
	RejectionReason  string                 `json:"rejection_reason,omitempty"`
	Version          int                    `json:"version"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// TransferListFilter represents filter options for transfers
type TransferListFilter struct {
	Status   string     `form:"status"`
	StoreID  *uuid.UUID `form:"store_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToHistoryEntryResponse converts a domain history entry to a response
func ToHistoryEntryResponse(e *inventory.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:             e.ID,
		Sequence:       e.Sequence,
		Date:           e.Date,
		Type:           e.Type.String(),
		ReferenceID:    e.ReferenceID,
		Description:    e.Description,
		ProductID:      e.ProductID,
		ProductName:    e.ProductName,
		QuantityChange: e.QuantityChange,
		CurrentStock:   e.CurrentStock,
		StoreID:        e.StoreID,
		UserID:         e.UserID,
		UserName:       e.UserName,
	}
}

// ToHistoryEntryResponses converts a slice of history entries
func ToHistoryEntryResponses(entries []inventory.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToHistoryEntryResponse(&entries[i])
	}
	return out
}

// ToStockAdjustmentResponse converts a domain stock adjustment to a response
func ToStockAdjustmentResponse(a *inventory.StockAdjustment) StockAdjustmentResponse {
	items := make([]AdjustmentItemResponse, len(a.Items))
	for i, item := range a.Items {
		items[i] = AdjustmentItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			AdjustmentType: string(item.AdjustmentType),
			Reason:         item.Reason,
		}
	}
	return StockAdjustmentResponse{
		ID:                 a.ID,
		AdjustmentDate:     a.AdjustmentDate,
		StoreID:            a.StoreID,
		StoreName:          a.StoreName,
		Items:              items,
		Notes:              a.Notes,
		ApprovedByUserID:   a.ApprovedByUserID,
		ApprovedByUserName: a.ApprovedByUserName,
		ApprovalDate:       a.ApprovalDate,
		CreatedAt:          a.CreatedAt,
	}
}

// ToTransferResponse converts a domain transfer to a response
func ToTransferResponse(t *inventory.Transfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = TransferItemResponse(item)
	}
	return TransferResponse{
		ID:               t.ID,
		TransferDate:     t.TransferDate,
		FromStoreID:      t.FromStoreID,
		FromStoreName:    t.FromStoreName,
		ToStoreID:        t.ToStoreID,
		ToStoreName:      t.ToStoreName,
		Items:            items,
		Status:           t.Status.String(),
		Notes:            t.Notes,
		DispatchedByName: t.DispatchedByName,
		DispatchedAt:     t.DispatchedAt,
		ReceivedByUserID: t.ReceivedByUserID,
		ReceivedByName:   t.ReceivedByName,
		ReceivedAt:       t.ReceivedAt,
		RejectedByName:   t.RejectedByName,
		RejectedAt:       t.RejectedAt,
		RejectionReason:  t.RejectionReason,
		Version:          t.Version,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func pageOf(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

func newFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	f.Page, f.PageSize = pageOf(page, pageSize)
	return f
}
