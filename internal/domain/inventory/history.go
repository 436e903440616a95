package inventory

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// HistoryType classifies the cause of a stock movement
type HistoryType string

const (
	HistoryTypeInitialStock   HistoryType = "INITIAL_STOCK"
	HistoryTypeProductEdit    HistoryType = "PRODUCT_EDIT"
	HistoryTypeProductDeleted HistoryType = "PRODUCT_DELETED"
	HistoryTypeSale           HistoryType = "SALE"
	HistoryTypeRefund         HistoryType = "REFUND"
	HistoryTypeGRN            HistoryType = "GRN"
	HistoryTypeAdjustmentIn   HistoryType = "SA_INCREASE"
	HistoryTypeAdjustmentOut  HistoryType = "SA_DECREASE"
	HistoryTypeTransferOut    HistoryType = "TOG_OUT"
	HistoryTypeTransferIn     HistoryType = "TOG_IN"
)

// AllHistoryTypes lists every known history type
func AllHistoryTypes() []HistoryType {
	return []HistoryType{
		HistoryTypeInitialStock, HistoryTypeProductEdit, HistoryTypeProductDeleted,
		HistoryTypeSale, HistoryTypeRefund, HistoryTypeGRN,
		HistoryTypeAdjustmentIn, HistoryTypeAdjustmentOut,
		HistoryTypeTransferOut, HistoryTypeTransferIn,
	}
}

// IsValid checks if the history type is known
func (t HistoryType) IsValid() bool {
	for _, known := range AllHistoryTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation of HistoryType
func (t HistoryType) String() string {
	return string(t)
}

// HistoryEntry is one immutable line of the inventory history log.
//
// CurrentStock is the post-change value of the scope that moved: the store's
// count for per-store products, otherwise the aggregate. Sequence is assigned
// by the store on append and orders entries globally.
type HistoryEntry struct {
	ID             uuid.UUID
	Sequence       int64
	Date           time.Time
	Type           HistoryType
	ReferenceID    uuid.UUID
	Description    string
	ProductID      uuid.UUID
	ProductName    string
	QuantityChange int
	CurrentStock   int
	StoreID        *uuid.UUID
	UserID         *string
	UserName       string
}

// HistoryEntryInput carries what a caller knows about a movement
type HistoryEntryInput struct {
	Type           HistoryType
	ReferenceID    uuid.UUID
	Description    string
	ProductID      uuid.UUID
	ProductName    string
	QuantityChange int
	CurrentStock   int
	StoreID        *uuid.UUID
	Actor          shared.Actor
}

// NewHistoryEntry creates a history entry stamped with the server time
func NewHistoryEntry(in HistoryEntryInput) (*HistoryEntry, error) {
	if !in.Type.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown history type %q", in.Type)
	}
	if in.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "History entry requires a product")
	}
	if in.CurrentStock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "History entry cannot record negative stock")
	}
	description := in.Description
	if description == "" {
		description = defaultDescription(in.Type)
	}
	return &HistoryEntry{
		ID:             uuid.New(),
		Date:           time.Now().UTC(),
		Type:           in.Type,
		ReferenceID:    in.ReferenceID,
		Description:    description,
		ProductID:      in.ProductID,
		ProductName:    in.ProductName,
		QuantityChange: in.QuantityChange,
		CurrentStock:   in.CurrentStock,
		StoreID:        in.StoreID,
		UserID:         in.Actor.UserIDPtr(),
		UserName:       in.Actor.UserName,
	}, nil
}

func defaultDescription(t HistoryType) string {
	switch t {
	case HistoryTypeInitialStock:
		return "Initial stock"
	case HistoryTypeProductEdit:
		return "Stock edited on product"
	case HistoryTypeProductDeleted:
		return "Product deleted"
	case HistoryTypeSale:
		return "Sold"
	case HistoryTypeRefund:
		return "Refunded"
	case HistoryTypeGRN:
		return "Goods received"
	case HistoryTypeAdjustmentIn:
		return "Stock adjustment (increase)"
	case HistoryTypeAdjustmentOut:
		return "Stock adjustment (decrease)"
	case HistoryTypeTransferOut:
		return "Transfer out"
	case HistoryTypeTransferIn:
		return "Transfer in"
	}
	return string(t)
}

// Balance is the ledger view of one (product, store) scope. With no store it
// covers the whole product: every movement, compared against the sum of the
// latest count of each scope (the aggregate plus every store).
type Balance struct {
	ProductID    uuid.UUID
	StoreID      *uuid.UUID
	RunningTotal int
	LatestStock  int
	EntryCount   int64
}

// IsConserved reports whether the latest recorded stock equals the running
// sum of all movements. An empty scope is trivially conserved.
func (b Balance) IsConserved() bool {
	if b.EntryCount == 0 {
		return true
	}
	return b.RunningTotal == b.LatestStock
}

// FoldBalance computes the balance of a product from its entries in sequence
// order. Entries of other products are ignored.
func FoldBalance(productID uuid.UUID, storeID *uuid.UUID, entries []HistoryEntry) Balance {
	b := Balance{ProductID: productID, StoreID: storeID}
	latest := make(map[uuid.UUID]int)
	for _, e := range entries {
		if e.ProductID != productID {
			continue
		}
		if storeID != nil && (e.StoreID == nil || *e.StoreID != *storeID) {
			continue
		}
		b.RunningTotal += e.QuantityChange
		b.EntryCount++
		latest[scopeKey(e.StoreID)] = e.CurrentStock
	}
	for _, stock := range latest {
		b.LatestStock += stock
	}
	return b
}

// scopeKey maps the aggregate scope to the nil uuid
func scopeKey(storeID *uuid.UUID) uuid.UUID {
	if storeID == nil {
		return uuid.Nil
	}
	return *storeID
}
