package models

import (
	"time"

	"github.com/erp/pos/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryModel is the persistence model for a journal entry header.
type JournalEntryModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key"`
	EntryDate     time.Time             `gorm:"not null;index"`
	ReferenceType finance.ReferenceType `gorm:"type:varchar(20);not null;index"`
	ReferenceID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description   string                `gorm:"type:text"`
	CreatedBy     *string               `gorm:"type:varchar(100)"`
	CreatedAt     time.Time             `gorm:"not null"`
	Lines         []JournalLineModel    `gorm:"foreignKey:EntryID"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalLineModel is one debit or credit line of a journal entry.
// Lines live in their own table so account totals can be summed in SQL.
type JournalLineModel struct {
	ID      int64           `gorm:"primaryKey;autoIncrement"`
	EntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo  int             `gorm:"not null"`
	Account finance.Account `gorm:"type:varchar(10);not null;index"`
	Debit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalEntry.
func (m *JournalEntryModel) ToDomain() *finance.JournalEntry {
	e := &finance.JournalEntry{
		ID:            m.ID,
		EntryDate:     m.EntryDate,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Description:   m.Description,
		Lines:         make([]finance.JournalLine, 0, len(m.Lines)),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
	for _, line := range m.Lines {
		e.Lines = append(e.Lines, finance.JournalLine{
			Account: line.Account,
			Debit:   line.Debit,
			Credit:  line.Credit,
		})
	}
	return e
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e *finance.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{
		ID:            e.ID,
		EntryDate:     e.EntryDate,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		Lines:         make([]JournalLineModel, 0, len(e.Lines)),
	}
	for i, line := range e.Lines {
		m.Lines = append(m.Lines, JournalLineModel{
			EntryID: e.ID,
			LineNo:  i + 1,
			Account: line.Account,
			Debit:   line.Debit,
			Credit:  line.Credit,
		})
	}
	return m
}
