package inventory

import (
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// AdjustmentType is the direction of a stock adjustment line
type AdjustmentType string

const (
	AdjustmentTypeIncrease AdjustmentType = "Increase"
	AdjustmentTypeDecrease AdjustmentType = "Decrease"
)

// IsValid checks if the adjustment type is known
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentTypeIncrease || t == AdjustmentTypeDecrease
}

// HistoryType returns the ledger classification for the direction
func (t AdjustmentType) HistoryType() HistoryType {
	if t == AdjustmentTypeDecrease {
		return HistoryTypeAdjustmentOut
	}
	return HistoryTypeAdjustmentIn
}

// SignedQuantity returns quantity with the sign of the direction
func (t AdjustmentType) SignedQuantity(quantity int) int {
	if t == AdjustmentTypeDecrease {
		return -quantity
	}
	return quantity
}

// AdjustmentItem is one product line of a stock adjustment
type AdjustmentItem struct {
	ProductID      uuid.UUID      `json:"productId"`
	ProductName    string         `json:"productName"`
	Quantity       int            `json:"quantity"`
	AdjustmentType AdjustmentType `json:"adjustmentType"`
	Reason         string         `json:"reason,omitempty"`
}

// StockAdjustment is a direct corrective stock change at one store.
// It is applied when it is created; there is no pending state.
type StockAdjustment struct {
	shared.BaseAggregateRoot
	AdjustmentDate     time.Time
	StoreID            uuid.UUID
	StoreName          string
	Items              []AdjustmentItem
	Notes              string
	ApprovedByUserID   *string
	ApprovedByUserName string
	ApprovalDate       *time.Time
}

// NewStockAdjustment validates the lines and creates an adjustment record
func NewStockAdjustment(storeID uuid.UUID, storeName string, date time.Time, items []AdjustmentItem, notes string) (*StockAdjustment, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A store is required for a stock adjustment")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A stock adjustment needs at least one item")
	}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d has no product", i+1)
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d quantity must be positive", i+1)
		}
		if !item.AdjustmentType.IsValid() {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d has unknown adjustment type %q", i+1, item.AdjustmentType)
		}
		items[i].Reason = strings.TrimSpace(item.Reason)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &StockAdjustment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AdjustmentDate:    date,
		StoreID:           storeID,
		StoreName:         storeName,
		Items:             items,
		Notes:             notes,
	}, nil
}

// MarkApplied stamps the approval metadata once the stock moves are done
func (a *StockAdjustment) MarkApplied(actor shared.Actor) {
	now := time.Now().UTC()
	a.ApprovedByUserID = actor.UserIDPtr()
	a.ApprovedByUserName = actor.UserName
	a.ApprovalDate = &now
	a.IncrementVersion()
}

// IsApplied reports whether stock has been moved for this adjustment
func (a *StockAdjustment) IsApplied() bool {
	return a.ApprovalDate != nil
}
