package models

import (
	"time"

	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	AggregateModel
	ReferenceNo          string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SupplierName         string                    `gorm:"type:varchar(200)"`
	OrderDate            time.Time                 `gorm:"not null"`
	ExpectedDeliveryDate *time.Time                `gorm:"column:expected_delivery_date"`
	Status               trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;index"`
	Items                string                    `gorm:"column:items;type:text;not null"`
	TotalValue           decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Notes                string                    `gorm:"type:text"`
	CompletedAt          *time.Time                `gorm:"column:completed_at"`
	CancelledAt          *time.Time                `gorm:"column:cancelled_at"`
	CancelReason         string                    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	o := &trade.PurchaseOrder{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		ReferenceNo:          m.ReferenceNo,
		SupplierID:           m.SupplierID,
		SupplierName:         m.SupplierName,
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		Status:               m.Status,
		Items:                make([]trade.PurchaseOrderItem, 0),
		TotalValue:           m.TotalValue,
		Notes:                m.Notes,
		CompletedAt:          m.CompletedAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
	decodeJSON("purchase_orders.items", m.ID, m.Items, &o.Items)
	return o
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ReferenceNo = o.ReferenceNo
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.OrderDate = o.OrderDate
	m.ExpectedDeliveryDate = o.ExpectedDeliveryDate
	m.Status = o.Status
	m.Items = encodeJSON("purchase_orders.items", o.Items)
	m.TotalValue = o.TotalValue
	m.Notes = o.Notes
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// GRNModel is the persistence model for the GoodsReceivedNote aggregate.
type GRNModel struct {
	AggregateModel
	ReferenceNo        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID    *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierName       string          `gorm:"type:varchar(200)"`
	ReceivedDate       time.Time       `gorm:"not null"`
	ReceivingStoreID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceivingStoreName string          `gorm:"type:varchar(100)"`
	Status             trade.GRNStatus `gorm:"type:varchar(20);not null;index"`
	Items              string          `gorm:"column:items;type:text;not null"`
	TotalValue         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes              string          `gorm:"type:text"`
	ApprovedByUserID   *string         `gorm:"type:varchar(100)"`
	ApprovedByUserName string          `gorm:"type:varchar(200)"`
	ApprovalDate       *time.Time
}

// TableName returns the table name for GORM
func (GRNModel) TableName() string {
	return "goods_received_notes"
}

// ToDomain converts the persistence model to a domain GoodsReceivedNote.
func (m *GRNModel) ToDomain() *trade.GoodsReceivedNote {
	g := &trade.GoodsReceivedNote{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		ReferenceNo:        m.ReferenceNo,
		PurchaseOrderID:    m.PurchaseOrderID,
		SupplierID:         m.SupplierID,
		SupplierName:       m.SupplierName,
		ReceivedDate:       m.ReceivedDate,
		ReceivingStoreID:   m.ReceivingStoreID,
		ReceivingStoreName: m.ReceivingStoreName,
		Status:             m.Status,
		Items:              make([]trade.GRNItem, 0),
		TotalValue:         m.TotalValue,
		Notes:              m.Notes,
		ApprovedByUserID:   m.ApprovedByUserID,
		ApprovedByUserName: m.ApprovedByUserName,
		ApprovalDate:       m.ApprovalDate,
	}
	decodeJSON("goods_received_notes.items", m.ID, m.Items, &g.Items)
	return g
}

// FromDomain populates the persistence model from a domain GoodsReceivedNote.
func (m *GRNModel) FromDomain(g *trade.GoodsReceivedNote) {
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	m.ReferenceNo = g.ReferenceNo
	m.PurchaseOrderID = g.PurchaseOrderID
	m.SupplierID = g.SupplierID
	m.SupplierName = g.SupplierName
	m.ReceivedDate = g.ReceivedDate
	m.ReceivingStoreID = g.ReceivingStoreID
	m.ReceivingStoreName = g.ReceivingStoreName
	m.Status = g.Status
	m.Items = encodeJSON("goods_received_notes.items", g.Items)
	m.TotalValue = g.TotalValue
	m.Notes = g.Notes
	m.ApprovedByUserID = g.ApprovedByUserID
	m.ApprovedByUserName = g.ApprovedByUserName
	m.ApprovalDate = g.ApprovalDate
}

// GRNModelFromDomain creates a new persistence model from a domain GoodsReceivedNote.
func GRNModelFromDomain(g *trade.GoodsReceivedNote) *GRNModel {
	m := &GRNModel{}
	m.FromDomain(g)
	return m
}

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	AggregateModel
	ReceiptNo      string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleDate       time.Time           `gorm:"not null;index"`
	StoreID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	StoreName      string              `gorm:"type:varchar(100)"`
	Items          string              `gorm:"column:items;type:text;not null"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Discount       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod  trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status         trade.SaleStatus    `gorm:"type:varchar(20);not null;index"`
	CashierID      *string             `gorm:"type:varchar(100)"`
	CashierName    string              `gorm:"type:varchar(200)"`
	RefundedAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ReceiptNo:         m.ReceiptNo,
		SaleDate:          m.SaleDate,
		StoreID:           m.StoreID,
		StoreName:         m.StoreName,
		Items:             make([]trade.SaleItem, 0),
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		Total:             m.Total,
		PaymentMethod:     m.PaymentMethod,
		Status:            m.Status,
		CashierID:         m.CashierID,
		CashierName:       m.CashierName,
		RefundedAmount:    m.RefundedAmount,
	}
	decodeJSON("sales.items", m.ID, m.Items, &s.Items)
	return s
}

// FromDomain populates the persistence model from a domain Sale.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ReceiptNo = s.ReceiptNo
	m.SaleDate = s.SaleDate
	m.StoreID = s.StoreID
	m.StoreName = s.StoreName
	m.Items = encodeJSON("sales.items", s.Items)
	m.Subtotal = s.Subtotal
	m.Discount = s.Discount
	m.Total = s.Total
	m.PaymentMethod = s.PaymentMethod
	m.Status = s.Status
	m.CashierID = s.CashierID
	m.CashierName = s.CashierName
	m.RefundedAmount = s.RefundedAmount
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleRefundModel is the persistence model for a refund recorded against a sale.
type SaleRefundModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	RefundDate time.Time       `gorm:"not null"`
	Items      string          `gorm:"column:items;type:text;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Cost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reason     string          `gorm:"type:text"`
	UserID     *string         `gorm:"type:varchar(100)"`
	UserName   string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SaleRefundModel) TableName() string {
	return "sale_refunds"
}

// ToDomain converts the persistence model to a domain SaleRefund.
func (m *SaleRefundModel) ToDomain() *trade.SaleRefund {
	r := &trade.SaleRefund{
		ID:         m.ID,
		SaleID:     m.SaleID,
		RefundDate: m.RefundDate,
		Items:      make([]trade.RefundItem, 0),
		Amount:     m.Amount,
		Cost:       m.Cost,
		Reason:     m.Reason,
		UserID:     m.UserID,
		UserName:   m.UserName,
	}
	decodeJSON("sale_refunds.items", m.ID, m.Items, &r.Items)
	return r
}

// SaleRefundModelFromDomain creates a new persistence model from a domain SaleRefund.
func SaleRefundModelFromDomain(r *trade.SaleRefund) *SaleRefundModel {
	return &SaleRefundModel{
		ID:         r.ID,
		SaleID:     r.SaleID,
		RefundDate: r.RefundDate,
		Items:      encodeJSON("sale_refunds.items", r.Items),
		Amount:     r.Amount,
		Cost:       r.Cost,
		Reason:     r.Reason,
		UserID:     r.UserID,
		UserName:   r.UserName,
	}
}
