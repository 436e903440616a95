package inventory

import (
	"context"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/finance"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories that a
// stock-moving workflow touches. Everything done through the repositories
// handed to fn commits or rolls back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - ProductRepo owns the stock-bearing fields; workflows read products with
//     FindByIDForUpdate before moving stock so the read and the write cannot interleave
//     with another transaction.
//   - HistoryRepo is append-only.
//   - The workflow repositories persist each document's own status transition in the
//     same transaction as its stock moves.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	HistoryRepo() inventory.HistoryRepository
	StoreRepo() partner.StoreRepository
	AdjustmentRepo() inventory.StockAdjustmentRepository
	TransferRepo() inventory.TransferRepository
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	GRNRepo() trade.GoodsReceivedNoteRepository
	SaleRepo() trade.SaleRepository
	JournalRepo() finance.JournalRepository
}

// Repositories bundles plain repository implementations
type Repositories struct {
	Products       catalog.ProductRepository
	History        inventory.HistoryRepository
	Stores         partner.StoreRepository
	Adjustments    inventory.StockAdjustmentRepository
	Transfers      inventory.TransferRepository
	PurchaseOrders trade.PurchaseOrderRepository
	GRNs           trade.GoodsReceivedNoteRepository
	Sales          trade.SaleRepository
	Journal        finance.JournalRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.repos.Products
}

// HistoryRepo returns the history repository.
func (s *NoOpTransactionScope) HistoryRepo() inventory.HistoryRepository {
	return s.repos.History
}

// StoreRepo returns the store repository.
func (s *NoOpTransactionScope) StoreRepo() partner.StoreRepository {
	return s.repos.Stores
}

// AdjustmentRepo returns the stock adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() inventory.StockAdjustmentRepository {
	return s.repos.Adjustments
}

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() inventory.TransferRepository {
	return s.repos.Transfers
}

// PurchaseOrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return s.repos.PurchaseOrders
}

// GRNRepo returns the GRN repository.
func (s *NoOpTransactionScope) GRNRepo() trade.GoodsReceivedNoteRepository {
	return s.repos.GRNs
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository {
	return s.repos.Sales
}

// JournalRepo returns the journal repository.
func (s *NoOpTransactionScope) JournalRepo() finance.JournalRepository {
	return s.repos.Journal
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
