package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService exposes the stock ledger to callers outside a workflow:
// absolute stock corrections and the read side of the history log.
type LedgerService struct {
	txScope     TransactionScope
	ledger      *StockLedger
	historyRepo inventory.HistoryRepository
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(txScope TransactionScope, ledger *StockLedger, historyRepo inventory.HistoryRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		txScope:     txScope,
		ledger:      ledger,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// ApplyStockDelta runs the ledger primitive in its own transaction
func (s *LedgerService) ApplyStockDelta(ctx context.Context, change StockChange, newAbsoluteStock int) (*Movement, error) {
	var movement *Movement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if change.StoreID != nil {
			if _, err := findStore(ctx, repos, *change.StoreID); err != nil {
				return err
			}
		}
		var err error
		movement, err = s.ledger.ApplyStockDelta(ctx, repos, change, newAbsoluteStock)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Published(ctx, movement.Entry)
	return movement, nil
}

// SetStockLevel is a manual stock count correction for one scope
func (s *LedgerService) SetStockLevel(ctx context.Context, req SetStockLevelRequest, actor shared.Actor) (*StockMovementResponse, error) {
	if req.Stock == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Stock is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Stock count correction"
	}
	movement, err := s.ApplyStockDelta(ctx, StockChange{
		ProductID:   req.ProductID,
		StoreID:     req.StoreID,
		HistoryType: inventory.HistoryTypeProductEdit,
		ReferenceID: req.ProductID,
		Reason:      reason,
		Actor:       actor,
	}, *req.Stock)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock level set",
		zap.String("product_id", req.ProductID.String()),
		zap.Int("previous", movement.Previous),
		zap.Int("current", movement.Current),
	)
	return toStockMovementResponse(movement, req.StoreID), nil
}

// ListHistory lists history entries
func (s *LedgerService) ListHistory(ctx context.Context, filter HistoryListFilter) ([]HistoryEntryResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	f.OrderBy = "seq"
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	if filter.StoreID != nil {
		f.Filters["store_id"] = *filter.StoreID
	}
	if filter.ReferenceID != nil {
		f.Filters["reference_id"] = *filter.ReferenceID
	}
	if filter.Type != "" {
		t := inventory.HistoryType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown history type %q", filter.Type)
		}
		f.Filters["type"] = t
	}

	entries, err := s.historyRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	total, err := s.historyRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}
	return ToHistoryEntryResponses(entries), total, nil
}

// GetBalance folds the history of a (product, store) scope
func (s *LedgerService) GetBalance(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID) (*BalanceResponse, error) {
	b, err := s.historyRepo.Balance(ctx, productID, storeID)
	if err != nil {
		return nil, fmt.Errorf("balance for product %s: %w", productID, err)
	}
	return &BalanceResponse{
		ProductID:    b.ProductID,
		StoreID:      b.StoreID,
		RunningTotal: b.RunningTotal,
		LatestStock:  b.LatestStock,
		EntryCount:   b.EntryCount,
		Conserved:    b.IsConserved(),
	}, nil
}

func toStockMovementResponse(m *Movement, storeID *uuid.UUID) *StockMovementResponse {
	resp := &StockMovementResponse{
		ProductID: m.Product.ID,
		StoreID:   storeID,
		Previous:  m.Previous,
		Current:   m.Current,
		Total:     m.Product.Stock,
	}
	if m.Entry != nil {
		entry := ToHistoryEntryResponse(m.Entry)
		resp.Entry = &entry
	}
	return resp
}
