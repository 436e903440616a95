package trade

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the settlement state of a sale
type SaleStatus string

const (
	SaleStatusCompleted         SaleStatus = "completed"
	SaleStatusPartiallyRefunded SaleStatus = "partially_refunded"
	SaleStatusRefunded          SaleStatus = "refunded"
)

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// SaleItem is one cart line of a finalized sale
type SaleItem struct {
	ProductID        uuid.UUID       `json:"productId"`
	ProductName      string          `json:"productName"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	RefundedQuantity int             `json:"refundedQuantity"`
	TrackStock       bool            `json:"trackStock"`
}

// LineTotal returns Quantity * UnitPrice
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RefundableQuantity returns how many units can still be returned
func (i SaleItem) RefundableQuantity() int {
	return i.Quantity - i.RefundedQuantity
}

// Sale is a finalized checkout at one store
type Sale struct {
	shared.BaseAggregateRoot
	ReceiptNo      string
	SaleDate       time.Time
	StoreID        uuid.UUID
	StoreName      string
	Items          []SaleItem
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  PaymentMethod
	Status         SaleStatus
	CashierID      *string
	CashierName    string
	RefundedAmount decimal.Decimal
}

// NewSale validates a cart and creates a completed sale. A store must have
// been selected before anything is put in the cart.
func NewSale(storeID uuid.UUID, storeName string, items []SaleItem, discount decimal.Decimal, method PaymentMethod, cashier shared.Actor) (*Sale, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Select a store before adding items to a sale")
	}
	if err := validateLines(len(items), func(i int) (uuid.UUID, int, decimal.Decimal) {
		return items[i].ProductID, items[i].Quantity, items[i].UnitPrice
	}); err != nil {
		return nil, err
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Unknown payment method %q", method)
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Discount cannot be negative")
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	if discount.GreaterThan(subtotal) {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Discount cannot exceed the subtotal")
	}
	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleDate:          time.Now().UTC(),
		StoreID:           storeID,
		StoreName:         storeName,
		Items:             items,
		Subtotal:          subtotal,
		Discount:          discount,
		Total:             subtotal.Sub(discount),
		PaymentMethod:     method,
		Status:            SaleStatusCompleted,
		CashierID:         cashier.UserIDPtr(),
		CashierName:       cashier.UserName,
		RefundedAmount:    decimal.Zero,
	}
	sale.ReceiptNo = "R-" + sale.SaleDate.Format("20060102") + "-" + sale.ID.String()[:8]
	return sale, nil
}

// CostOfGoods returns the cost of every unit sold
func (s *Sale) CostOfGoods() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// RefundLine asks for a quantity of one product back
type RefundLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ApplyRefund records returned quantities on the sale lines and returns the
// refund document describing them. Refunded amounts are net of the sale
// discount, pro rata.
func (s *Sale) ApplyRefund(lines []RefundLine, reason string, actor shared.Actor) (*SaleRefund, error) {
	if s.Status == SaleStatusRefunded {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Sale has already been fully refunded")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "At least one refund line is required")
	}

	requested := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeValidationFailed, "Refund quantity must be positive")
		}
		requested[line.ProductID] += line.Quantity
	}

	refund := &SaleRefund{
		ID:         uuid.New(),
		SaleID:     s.ID,
		RefundDate: time.Now().UTC(),
		Reason:     reason,
		UserID:     actor.UserIDPtr(),
		UserName:   actor.UserName,
		Amount:     decimal.Zero,
		Cost:       decimal.Zero,
	}
	ratio := decimal.NewFromInt(1)
	if s.Subtotal.IsPositive() {
		ratio = s.Total.Div(s.Subtotal)
	}

	// Validate everything before touching any line.
	for productID, qty := range requested {
		idx := s.itemIndex(productID)
		if idx < 0 {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed, "Product %s is not part of this sale", productID)
		}
		if qty > s.Items[idx].RefundableQuantity() {
			return nil, shared.NewDomainErrorf(shared.CodeValidationFailed,
				"Cannot refund %d of %s; only %d refundable", qty, s.Items[idx].ProductName, s.Items[idx].RefundableQuantity())
		}
	}
	for _, line := range lines {
		idx := s.itemIndex(line.ProductID)
		item := &s.Items[idx]
		item.RefundedQuantity += line.Quantity
		q := decimal.NewFromInt(int64(line.Quantity))
		amount := item.UnitPrice.Mul(q).Mul(ratio).Round(2)
		refund.Items = append(refund.Items, RefundItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    line.Quantity,
			Amount:      amount,
			UnitCost:    item.UnitCost,
			TrackStock:  item.TrackStock,
		})
		refund.Amount = refund.Amount.Add(amount)
		refund.Cost = refund.Cost.Add(item.UnitCost.Mul(q))
	}

	s.RefundedAmount = s.RefundedAmount.Add(refund.Amount)
	s.Status = SaleStatusPartiallyRefunded
	if s.fullyRefunded() {
		s.Status = SaleStatusRefunded
	}
	s.IncrementVersion()
	return refund, nil
}

func (s *Sale) itemIndex(productID uuid.UUID) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Sale) fullyRefunded() bool {
	for _, item := range s.Items {
		if item.RefundableQuantity() > 0 {
			return false
		}
	}
	return true
}

// RefundItem is one returned product line
type RefundItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	TrackStock  bool            `json:"trackStock"`
}

// SaleRefund records goods returned against a sale
type SaleRefund struct {
	ID         uuid.UUID
	SaleID     uuid.UUID
	RefundDate time.Time
	Items      []RefundItem
	Amount     decimal.Decimal
	Cost       decimal.Decimal
	Reason     string
	UserID     *string
	UserName   string
}
