package trade

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	ReferenceNo          string                         `json:"reference_no" binding:"required,min=1,max=50"`
	SupplierID           uuid.UUID                      `json:"supplier_id" binding:"required"`
	OrderDate            *time.Time                     `json:"order_date"`
	ExpectedDeliveryDate *time.Time                     `json:"expected_delivery_date"`
	Items                []CreatePurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Notes                string                         `json:"notes" binding:"max=500"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
type CreatePurchaseOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// PurchaseOrderItemResponse represents an order line in API responses
type PurchaseOrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	ReferenceNo          string                      `json:"reference_no"`
	SupplierID           uuid.UUID                   `json:"supplier_id"`
	SupplierName         string                      `json:"supplier_name"`
	OrderDate            time.Time                   `json:"order_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	Status               string                      `json:"status"`
	Items                []PurchaseOrderItemResponse `json:"items"`
	TotalValue           decimal.Decimal             `json:"total_value"`
	Notes                string                      `json:"notes,omitempty"`
	CompletedAt          *time.Time                  `json:"completed_at,omitempty"`
	CancelledAt          *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason         string                      `json:"cancel_reason,omitempty"`
	Version              int                         `json:"version"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// PurchaseOrderListFilter represents filter options for purchase orders
type PurchaseOrderListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ==================== GRN DTOs ====================

// CreateGRNRequest represents a request to record a goods received note
type CreateGRNRequest struct {
	ReferenceNo      string               `json:"reference_no" binding:"required,min=1,max=50"`
	PurchaseOrderID  *uuid.UUID           `json:"purchase_order_id"`
	SupplierID       *uuid.UUID           `json:"supplier_id"`
	ReceivedDate     *time.Time           `json:"received_date"`
	ReceivingStoreID uuid.UUID            `json:"receiving_store_id" binding:"required"`
	Items            []CreateGRNItemInput `json:"items" binding:"omitempty,dive"`
	Notes            string               `json:"notes" binding:"max=500"`
}

// CreateGRNItemInput represents a received line. When the GRN references a
// purchase order and no items are given, the order lines are received in full.
type CreateGRNItemInput struct {
	ProductID        uuid.UUID        `json:"product_id" binding:"required"`
	QuantityReceived int              `json:"quantity_received" binding:"required,min=1"`
	UnitCost         *decimal.Decimal `json:"unit_cost"`
}

// GRNItemResponse represents a received line in API responses
type GRNItemResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	QuantityReceived int             `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Amount           decimal.Decimal `json:"amount"`
}

// GRNResponse represents a goods received note in API responses
type GRNResponse struct {
	ID                 uuid.UUID         `json:"id"`
	ReferenceNo        string            `json:"reference_no"`
	PurchaseOrderID    *uuid.UUID        `json:"purchase_order_id,omitempty"`
	SupplierID         uuid.UUID         `json:"supplier_id"`
	SupplierName       string            `json:"supplier_name"`
	ReceivedDate       time.Time         `json:"received_date"`
	ReceivingStoreID   uuid.UUID         `json:"receiving_store_id"`
	ReceivingStoreName string            `json:"receiving_store_name"`
	Status             string            `json:"status"`
	Items              []GRNItemResponse `json:"items"`
	TotalValue         decimal.Decimal   `json:"total_value"`
	Notes              string            `json:"notes,omitempty"`
	ApprovedByUserID   *string           `json:"approved_by_user_id,omitempty"`
	ApprovedByUserName string            `json:"approved_by_user_name,omitempty"`
	ApprovalDate       *time.Time        `json:"approval_date,omitempty"`
	Version            int               `json:"version"`
	CreatedAt          time.Time         `json:"created_at"`
}

// GRNListFilter represents filter options for GRNs
type GRNListFilter struct {
	Status          string     `form:"status" binding:"omitempty,oneof=pending approved"`
	PurchaseOrderID *uuid.UUID `form:"purchase_order_id"`
	StoreID         *uuid.UUID `form:"store_id"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ==================== Sale DTOs ====================

// FinalizeSaleRequest is a checked-out cart
type FinalizeSaleRequest struct {
	StoreID       *uuid.UUID      `json:"store_id"`
	Items         []SaleItemInput `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash card"`
}

// SaleItemInput is one cart line. UnitPrice defaults to the catalog price.
type SaleItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// RefundSaleRequest lists the quantities returned
type RefundSaleRequest struct {
	Items  []RefundItemInput `json:"items" binding:"required,min=1,dive"`
	Reason string            `json:"reason" binding:"max=255"`
}

// RefundItemInput is one returned line
type RefundItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
	RefundedQuantity int             `json:"refunded_quantity"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	ReceiptNo      string             `json:"receipt_no"`
	SaleDate       time.Time          `json:"sale_date"`
	StoreID        uuid.UUID          `json:"store_id"`
	StoreName      string             `json:"store_name"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	CashierID      *string            `json:"cashier_id,omitempty"`
	CashierName    string             `json:"cashier_name,omitempty"`
	RefundedAmount decimal.Decimal    `json:"refunded_amount"`
	Version        int                `json:"version"`
}

// RefundResponse represents a refund in API responses
type RefundResponse struct {
	ID         uuid.UUID       `json:"id"`
	SaleID     uuid.UUID       `json:"sale_id"`
	RefundDate time.Time       `json:"refund_date"`
	Items      []RefundLineDTO `json:"items"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
	UserName   string          `json:"user_name,omitempty"`
	Sale       *SaleResponse   `json:"sale,omitempty"`
}

// RefundLineDTO is one refunded line
type RefundLineDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// SaleListFilter represents filter options for sales
type SaleListFilter struct {
	StoreID  *uuid.UUID `form:"store_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=completed partially_refunded refunded"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ==================== Converters ====================

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = PurchaseOrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			Amount:      item.Amount(),
		}
	}
	return PurchaseOrderResponse{
		ID:                   o.ID,
		ReferenceNo:          o.ReferenceNo,
		SupplierID:           o.SupplierID,
		SupplierName:         o.SupplierName,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		Status:               o.Status.String(),
		Items:                items,
		TotalValue:           o.TotalValue,
		Notes:                o.Notes,
		CompletedAt:          o.CompletedAt,
		CancelledAt:          o.CancelledAt,
		CancelReason:         o.CancelReason,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
	}
}

// ToGRNResponse converts a domain GoodsReceivedNote to a response
func ToGRNResponse(g *trade.GoodsReceivedNote) GRNResponse {
	items := make([]GRNItemResponse, len(g.Items))
	for i, item := range g.Items {
		items[i] = GRNItemResponse{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			QuantityReceived: item.QuantityReceived,
			UnitCost:         item.UnitCost,
			Amount:           item.Amount(),
		}
	}
	return GRNResponse{
		ID:                 g.ID,
		ReferenceNo:        g.ReferenceNo,
		PurchaseOrderID:    g.PurchaseOrderID,
		SupplierID:         g.SupplierID,
		SupplierName:       g.SupplierName,
		ReceivedDate:       g.ReceivedDate,
		ReceivingStoreID:   g.ReceivingStoreID,
		ReceivingStoreName: g.ReceivingStoreName,
		Status:             g.Status.String(),
		Items:              items,
		TotalValue:         g.TotalValue,
		Notes:              g.Notes,
		ApprovedByUserID:   g.ApprovedByUserID,
		ApprovedByUserName: g.ApprovedByUserName,
		ApprovalDate:       g.ApprovalDate,
		Version:            g.Version,
		CreatedAt:          g.CreatedAt,
	}
}

// ToSaleResponse converts a domain Sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			LineTotal:        item.LineTotal(),
			RefundedQuantity: item.RefundedQuantity,
		}
	}
	return SaleResponse{
		ID:             s.ID,
		ReceiptNo:      s.ReceiptNo,
		SaleDate:       s.SaleDate,
		StoreID:        s.StoreID,
		StoreName:      s.StoreName,
		Items:          items,
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		Total:          s.Total,
		PaymentMethod:  string(s.PaymentMethod),
		Status:         string(s.Status),
		CashierID:      s.CashierID,
		CashierName:    s.CashierName,
		RefundedAmount: s.RefundedAmount,
		Version:        s.Version,
	}
}

// ToRefundResponse converts a domain SaleRefund to a response
func ToRefundResponse(r *trade.SaleRefund) RefundResponse {
	items := make([]RefundLineDTO, len(r.Items))
	for i, item := range r.Items {
		items[i] = RefundLineDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
		}
	}
	return RefundResponse{
		ID:         r.ID,
		SaleID:     r.SaleID,
		RefundDate: r.RefundDate,
		Items:      items,
		Amount:     r.Amount,
		Reason:     r.Reason,
		UserName:   r.UserName,
	}
}

func newFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f
}
