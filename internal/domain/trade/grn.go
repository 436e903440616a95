package trade

import (
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GRNStatus represents the status of a goods received note
type GRNStatus string

const (
	GRNStatusPending  GRNStatus = "pending"
	GRNStatusApproved GRNStatus = "approved"
)

// IsValid checks if the status is known
func (s GRNStatus) IsValid() bool {
	return s == GRNStatusPending || s == GRNStatusApproved
}

// String returns the string representation of GRNStatus
func (s GRNStatus) String() string {
	return string(s)
}

// GRNItem is one received product line
type GRNItem struct {
	ProductID        uuid.UUID       `json:"productId"`
	ProductName      string          `json:"productName"`
	QuantityReceived int             `json:"quantityReceived"`
	UnitCost         decimal.Decimal `json:"unitCost"`
}

// Amount returns QuantityReceived * UnitCost
func (i GRNItem) Amount() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.QuantityReceived)))
}

// GoodsReceivedNote confirms physical receipt of supplier goods at a store.
// Stock only moves when the note is approved, exactly once.
type GoodsReceivedNote struct {
	shared.BaseAggregateRoot
	ReferenceNo        string
	PurchaseOrderID    *uuid.UUID
	SupplierID         uuid.UUID
	SupplierName       string
	ReceivedDate       time.Time
	ReceivingStoreID   uuid.UUID
	ReceivingStoreName string
	Status             GRNStatus
	Items              []GRNItem
	TotalValue         decimal.Decimal
	Notes              string
	ApprovedByUserID   *string
	ApprovedByUserName string
	ApprovalDate       *time.Time
}

// GRNHeader holds the non-line fields of a new GRN
type GRNHeader struct {
	ReferenceNo        string
	PurchaseOrderID    *uuid.UUID
	SupplierID         uuid.UUID
	SupplierName       string
	ReceivedDate       time.Time
	ReceivingStoreID   uuid.UUID
	ReceivingStoreName string
	Notes              string
}

// NewGoodsReceivedNote creates a pending GRN
func NewGoodsReceivedNote(header GRNHeader, items []GRNItem) (*GoodsReceivedNote, error) {
	header.ReferenceNo = strings.TrimSpace(header.ReferenceNo)
	if header.ReferenceNo == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Reference number is required")
	}
	if header.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A supplier is required")
	}
	if header.ReceivingStoreID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A receiving store is required")
	}
	if err := validateLines(len(items), func(i int) (uuid.UUID, int, decimal.Decimal) {
		return items[i].ProductID, items[i].QuantityReceived, items[i].UnitCost
	}); err != nil {
		return nil, err
	}
	if header.ReceivedDate.IsZero() {
		header.ReceivedDate = time.Now().UTC()
	}
	grn := &GoodsReceivedNote{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ReferenceNo:        header.ReferenceNo,
		PurchaseOrderID:    header.PurchaseOrderID,
		SupplierID:         header.SupplierID,
		SupplierName:       header.SupplierName,
		ReceivedDate:       header.ReceivedDate,
		ReceivingStoreID:   header.ReceivingStoreID,
		ReceivingStoreName: header.ReceivingStoreName,
		Status:             GRNStatusPending,
		Items:              items,
		Notes:              header.Notes,
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	grn.TotalValue = total
	return grn, nil
}

// EnsurePending returns INVALID_STATE unless the note awaits approval
func (g *GoodsReceivedNote) EnsurePending() error {
	if g.Status != GRNStatusPending {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "GRN %s is already %s", g.ReferenceNo, g.Status)
	}
	return nil
}

// Approve stamps the note approved
func (g *GoodsReceivedNote) Approve(actor shared.Actor) error {
	if err := g.EnsurePending(); err != nil {
		return err
	}
	now := time.Now().UTC()
	g.Status = GRNStatusApproved
	g.ApprovedByUserID = actor.UserIDPtr()
	g.ApprovedByUserName = actor.UserName
	g.ApprovalDate = &now
	g.IncrementVersion()
	return nil
}
