package trade

import (
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	if s == PurchaseOrderStatusPending {
		return target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	}
	return false // Terminal states
}

// PurchaseOrderItem is one ordered product line
type PurchaseOrderItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

// Amount returns Quantity * UnitCost
func (i PurchaseOrderItem) Amount() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PurchaseOrder is an order placed with a supplier. It is completed by the
// approval of a goods received note that references it.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	ReferenceNo          string
	SupplierID           uuid.UUID
	SupplierName         string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Status               PurchaseOrderStatus
	Items                []PurchaseOrderItem
	TotalValue           decimal.Decimal
	Notes                string
	CompletedAt          *time.Time
	CancelledAt          *time.Time
	CancelReason         string
}

// NewPurchaseOrder creates a pending purchase order
func NewPurchaseOrder(referenceNo string, supplierID uuid.UUID, supplierName string, orderDate time.Time, items []PurchaseOrderItem) (*PurchaseOrder, error) {
	referenceNo = strings.TrimSpace(referenceNo)
	if referenceNo == "" {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Reference number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A supplier is required")
	}
	if err := validateLines(len(items), func(i int) (uuid.UUID, int, decimal.Decimal) {
		return items[i].ProductID, items[i].Quantity, items[i].UnitCost
	}); err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}
	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReferenceNo:       referenceNo,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		OrderDate:         orderDate,
		Status:            PurchaseOrderStatusPending,
		Items:             items,
	}
	po.recalculateTotal()
	return po, nil
}

// Complete marks the order fulfilled
func (o *PurchaseOrder) Complete() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCompleted) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Purchase order %s is %s and cannot be completed", o.ReferenceNo, o.Status)
	}
	now := time.Now().UTC()
	o.Status = PurchaseOrderStatusCompleted
	o.CompletedAt = &now
	o.IncrementVersion()
	return nil
}

// Cancel abandons a pending order
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Purchase order %s is %s and cannot be cancelled", o.ReferenceNo, o.Status)
	}
	now := time.Now().UTC()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.IncrementVersion()
	return nil
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	o.TotalValue = total
}

func validateLines(n int, line func(i int) (uuid.UUID, int, decimal.Decimal)) error {
	if n == 0 {
		return shared.NewDomainError(shared.CodeValidationFailed, "At least one item is required")
	}
	for i := 0; i < n; i++ {
		productID, qty, price := line(i)
		if productID == uuid.Nil {
			return shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d has no product", i+1)
		}
		if qty <= 0 {
			return shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d quantity must be positive", i+1)
		}
		if price.IsNegative() {
			return shared.NewDomainErrorf(shared.CodeValidationFailed, "Item %d price cannot be negative", i+1)
		}
	}
	return nil
}
