package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MovementObserver is told about history entries after their transaction commits
type MovementObserver interface {
	StockMoved(ctx context.Context, entry *inventory.HistoryEntry)
}

// StockChange describes one requested stock mutation
type StockChange struct {
	ProductID   uuid.UUID
	StoreID     *uuid.UUID
	HistoryType inventory.HistoryType
	ReferenceID uuid.UUID
	Reason      string
	ProductName string
	Actor       shared.Actor
}

// Movement is the outcome of a ledger call
type Movement struct {
	Product  *catalog.Product
	Previous int
	Current  int
	// Entry is nil when nothing moved
	Entry *inventory.HistoryEntry
}

// StockLedger is the single place where product stock changes. Every method
// works on the repositories of an open transaction so that the product write
// and the history append commit together.
type StockLedger struct {
	logger   *zap.Logger
	observer MovementObserver
}

// NewStockLedger creates a new StockLedger
func NewStockLedger(logger *zap.Logger) *StockLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedger{logger: logger}
}

// SetObserver sets the observer notified of committed movements
func (l *StockLedger) SetObserver(observer MovementObserver) {
	l.observer = observer
}

// ApplyStockDelta sets the stock of the (product, store) scope to an absolute
// target. The scope is the store's own count when a store is given and the
// product tracks stock per store, otherwise the aggregate. One history entry
// is appended when the value changes; a zero change persists the product and
// writes no history.
func (l *StockLedger) ApplyStockDelta(ctx context.Context, repos TransactionalRepositories, change StockChange, newAbsoluteStock int) (*Movement, error) {
	product, err := l.lockProduct(ctx, repos, change.ProductID)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, repos, product, change, newAbsoluteStock)
}

// MoveStock adds delta to the current stock of the scope. The current value
// is read under a row lock inside the caller's transaction, so concurrent
// movements of the same product serialize instead of overwriting each other.
// The trackStock flag is not consulted here; sales and refunds filter
// untracked lines before calling.
func (l *StockLedger) MoveStock(ctx context.Context, repos TransactionalRepositories, change StockChange, delta int) (*Movement, error) {
	product, err := l.lockProduct(ctx, repos, change.ProductID)
	if err != nil {
		return nil, err
	}
	current := product.EffectiveStock(change.StoreID)
	target := current + delta
	if target < 0 {
		return nil, shared.NewDomainErrorf(shared.CodeInsufficientStock,
			"Insufficient stock for %s: available %d, requested %d", product.Name, current, -delta)
	}
	return l.apply(ctx, repos, product, change, target)
}

// RecordEntry appends a history entry for a stock change the catalog made
// directly on a product (initial stock, manual edit, deletion).
func (l *StockLedger) RecordEntry(ctx context.Context, repos TransactionalRepositories, in inventory.HistoryEntryInput) (*inventory.HistoryEntry, error) {
	entry, err := inventory.NewHistoryEntry(in)
	if err != nil {
		return nil, err
	}
	if err := repos.HistoryRepo().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append %s history for product %s: %w", in.Type, in.ProductID, err)
	}
	return entry, nil
}

// Published notifies the observer about entries whose transaction committed
func (l *StockLedger) Published(ctx context.Context, entries ...*inventory.HistoryEntry) {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		l.logger.Debug("stock moved",
			zap.String("product_id", entry.ProductID.String()),
			zap.String("history_type", entry.Type.String()),
			zap.String("reference_id", entry.ReferenceID.String()),
			zap.Int("quantity_change", entry.QuantityChange),
			zap.Int("current_stock", entry.CurrentStock),
		)
		if l.observer != nil {
			l.observer.StockMoved(ctx, entry)
		}
	}
}

func (l *StockLedger) lockProduct(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID) (*catalog.Product, error) {
	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Product", productID)
		}
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}
	return product, nil
}

func (l *StockLedger) apply(ctx context.Context, repos TransactionalRepositories, product *catalog.Product, change StockChange, target int) (*Movement, error) {
	if !change.HistoryType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown history type %q", change.HistoryType)
	}
	previous, err := product.SetEffectiveStock(change.StoreID, target)
	if err != nil {
		return nil, err
	}
	if err := repos.ProductRepo().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product %s: %w", product.ID, err)
	}

	movement := &Movement{Product: product, Previous: previous, Current: target}
	quantityChange := target - previous
	if quantityChange == 0 {
		return movement, nil
	}

	name := change.ProductName
	if name == "" {
		name = product.Name
	}
	// The entry belongs to the scope whose count it records. A store given
	// for an aggregate-stock product resolved to the aggregate.
	var scope *uuid.UUID
	if product.UsesStoreStock() {
		scope = change.StoreID
	}
	entry, err := l.RecordEntry(ctx, repos, inventory.HistoryEntryInput{
		Type:           change.HistoryType,
		ReferenceID:    change.ReferenceID,
		Description:    change.Reason,
		ProductID:      product.ID,
		ProductName:    name,
		QuantityChange: quantityChange,
		CurrentStock:   target,
		StoreID:        scope,
		Actor:          change.Actor,
	})
	if err != nil {
		return nil, err
	}
	movement.Entry = entry
	return movement, nil
}

// EntriesOf collects the history entries of the given movements
func EntriesOf(movements []*Movement) []*inventory.HistoryEntry {
	out := make([]*inventory.HistoryEntry, 0, len(movements))
	for _, m := range movements {
		if m != nil && m.Entry != nil {
			out = append(out, m.Entry)
		}
	}
	return out
}
