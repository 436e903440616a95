package finance

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// JournalRepository defines persistence for journal entries
type JournalRepository interface {
	Save(ctx context.Context, entry *JournalEntry) error
	FindAll(ctx context.Context, filter shared.Filter) ([]JournalEntry, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByReference(ctx context.Context, referenceID uuid.UUID) ([]JournalEntry, error)
	AccountTotals(ctx context.Context) ([]AccountBalance, error)
}
