package inventory

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// HistoryRepository is the append-only store of history entries.
// There is deliberately no update or delete.
type HistoryRepository interface {
	// Append writes a new entry and assigns its sequence number
	Append(ctx context.Context, entry *HistoryEntry) error

	// FindAll lists entries matching the filter, newest first by default
	FindAll(ctx context.Context, filter shared.Filter) ([]HistoryEntry, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindByReference lists the entries caused by one business document
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]HistoryEntry, error)

	// Balance folds the movements of a product, optionally restricted to one store
	Balance(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID) (*Balance, error)
}

// StockAdjustmentRepository defines persistence for stock adjustments
type StockAdjustmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockAdjustment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockAdjustment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, adjustment *StockAdjustment) error
}

// TransferRepository defines persistence for transfers of goods
type TransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Transfer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, transfer *Transfer) error
}
