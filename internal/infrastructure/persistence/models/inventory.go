package models

import (
	"time"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/google/uuid"
)

// InventoryHistoryModel is the persistence model for one history entry.
// Rows are only ever inserted; Sequence is assigned by the database and
// orders entries globally.
type InventoryHistoryModel struct {
	Sequence       int64                 `gorm:"column:seq;primaryKey;autoIncrement"`
	ID             uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	Date           time.Time             `gorm:"not null;index"`
	Type           inventory.HistoryType `gorm:"type:varchar(20);not null;index"`
	ReferenceID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description    string                `gorm:"type:text"`
	ProductID      uuid.UUID             `gorm:"type:uuid;not null;index:idx_history_product_store,priority:1"`
	ProductName    string                `gorm:"type:varchar(200)"`
	QuantityChange int                   `gorm:"not null"`
	CurrentStock   int                   `gorm:"not null"`
	StoreID        *uuid.UUID            `gorm:"type:uuid;index:idx_history_product_store,priority:2"`
	UserID         *string               `gorm:"type:varchar(100)"`
	UserName       string                `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (InventoryHistoryModel) TableName() string {
	return "inventory_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry.
func (m *InventoryHistoryModel) ToDomain() *inventory.HistoryEntry {
	return &inventory.HistoryEntry{
		ID:             m.ID,
		Sequence:       m.Sequence,
		Date:           m.Date,
		Type:           m.Type,
		ReferenceID:    m.ReferenceID,
		Description:    m.Description,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		QuantityChange: m.QuantityChange,
		CurrentStock:   m.CurrentStock,
		StoreID:        m.StoreID,
		UserID:         m.UserID,
		UserName:       m.UserName,
	}
}

// InventoryHistoryModelFromDomain creates a new persistence model from a domain HistoryEntry.
func InventoryHistoryModelFromDomain(e *inventory.HistoryEntry) *InventoryHistoryModel {
	return &InventoryHistoryModel{
		Sequence:       e.Sequence,
		ID:             e.ID,
		Date:           e.Date,
		Type:           e.Type,
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

// StockAdjustmentModel is the persistence model for the StockAdjustment aggregate.
type StockAdjustmentModel struct {
	AggregateModel
	AdjustmentDate     time.Time `gorm:"not null;index"`
	StoreID            uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreName          string    `gorm:"type:varchar(100)"`
	Items              string    `gorm:"column:items;type:text;not null"`
	Notes              string    `gorm:"type:text"`
	ApprovedByUserID   *string   `gorm:"type:varchar(100)"`
	ApprovedByUserName string    `gorm:"type:varchar(200)"`
	ApprovalDate       *time.Time
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the persistence model to a domain StockAdjustment.
func (m *StockAdjustmentModel) ToDomain() *inventory.StockAdjustment {
	a := &inventory.StockAdjustment{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		AdjustmentDate:     m.AdjustmentDate,
		StoreID:            m.StoreID,
		StoreName:          m.StoreName,
		Items:              make([]inventory.AdjustmentItem, 0),
		Notes:              m.Notes,
		ApprovedByUserID:   m.ApprovedByUserID,
		ApprovedByUserName: m.ApprovedByUserName,
		ApprovalDate:       m.ApprovalDate,
	}
	decodeJSON("stock_adjustments.items", m.ID, m.Items, &a.Items)
	return a
}

// FromDomain populates the persistence model from a domain StockAdjustment.
func (m *StockAdjustmentModel) FromDomain(a *inventory.StockAdjustment) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.AdjustmentDate = a.AdjustmentDate
	m.StoreID = a.StoreID
	m.StoreName = a.StoreName
	m.Items = encodeJSON("stock_adjustments.items", a.Items)
	m.Notes = a.Notes
	m.ApprovedByUserID = a.ApprovedByUserID
	m.ApprovedByUserName = a.ApprovedByUserName
	m.ApprovalDate = a.ApprovalDate
}

// StockAdjustmentModelFromDomain creates a new persistence model from a domain StockAdjustment.
func StockAdjustmentModelFromDomain(a *inventory.StockAdjustment) *StockAdjustmentModel {
	m := &StockAdjustmentModel{}
	m.FromDomain(a)
	return m
}

// TransferModel is the persistence model for the Transfer aggregate.
type TransferModel struct {
	AggregateModel
	TransferDate        time.Time                `gorm:"not null;index"`
	FromStoreID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	FromStoreName       string                   `gorm:"type:varchar(100)"`
	ToStoreID           uuid.UUID                `gorm:"type:uuid;not null;index"`
	ToStoreName         string                   `gorm:"type:varchar(100)"`
	Items               string                   `gorm:"column:items;type:text;not null"`
	Status              inventory.TransferStatus `gorm:"type:varchar(20);not null;index"`
	Notes               string                   `gorm:"type:text"`
	DispatchedByUserID  *string                  `gorm:"type:varchar(100)"`
	DispatchedByName    string                   `gorm:"type:varchar(200)"`
	DispatchedAt        *time.Time               `gorm:"column:dispatched_at"`
	ReceivedByUserID    *string                  `gorm:"type:varchar(100)"`
	ReceivedByName      string                   `gorm:"type:varchar(200)"`
	ReceivedAt          *time.Time               `gorm:"column:received_at"`
	RejectedByUserID    *string                  `gorm:"type:varchar(100)"`
	RejectedByName      string                   `gorm:"type:varchar(200)"`
	RejectedAt          *time.Time               `gorm:"column:rejected_at"`
	RejectionReason     string                   `gorm:"type:text"`
	RejectedFromTransit bool                     `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TransferModel) TableName() string {
	return "transfers"
}

// ToDomain converts the persistence model to a domain Transfer.
func (m *TransferModel) ToDomain() *inventory.Transfer {
	t := &inventory.Transfer{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		TransferDate:        m.TransferDate,
		FromStoreID:         m.FromStoreID,
		FromStoreName:       m.FromStoreName,
		ToStoreID:           m.ToStoreID,
		ToStoreName:         m.ToStoreName,
		Items:               make([]inventory.TransferItem, 0),
		Status:              m.Status,
		Notes:               m.Notes,
		DispatchedByUserID:  m.DispatchedByUserID,
		DispatchedByName:    m.DispatchedByName,
		DispatchedAt:        m.DispatchedAt,
		ReceivedByUserID:    m.ReceivedByUserID,
		ReceivedByName:      m.ReceivedByName,
		ReceivedAt:          m.ReceivedAt,
		RejectedByUserID:    m.RejectedByUserID,
		RejectedByName:      m.RejectedByName,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		RejectedFromTransit: m.RejectedFromTransit,
	}
	decodeJSON("transfers.items", m.ID, m.Items, &t.Items)
	return t
}

// FromDomain populates the persistence model from a domain Transfer.
func (m *TransferModel) FromDomain(t *inventory.Transfer) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TransferDate = t.TransferDate
	m.FromStoreID = t.FromStoreID
	m.FromStoreName = t.FromStoreName
	m.ToStoreID = t.ToStoreID
	m.ToStoreName = t.ToStoreName
	m.Items = encodeJSON("transfers.items", t.Items)
	m.Status = t.Status
	m.Notes = t.Notes
	m.DispatchedByUserID = t.DispatchedByUserID
	m.DispatchedByName = t.DispatchedByName
	m.DispatchedAt = t.DispatchedAt
	m.ReceivedByUserID = t.ReceivedByUserID
	m.ReceivedByName = t.ReceivedByName
	m.ReceivedAt = t.ReceivedAt
	m.RejectedByUserID = t.RejectedByUserID
	m.RejectedByName = t.RejectedByName
	m.RejectedAt = t.RejectedAt
	m.RejectionReason = t.RejectionReason
	m.RejectedFromTransit = t.RejectedFromTransit
}

// TransferModelFromDomain creates a new persistence model from a domain Transfer.
func TransferModelFromDomain(t *inventory.Transfer) *TransferModel {
	m := &TransferModel{}
	m.FromDomain(t)
	return m
}
