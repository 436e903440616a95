package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjustmentService applies direct corrective stock changes.
// An adjustment is applied when it is created; approving it afterwards is an
// acknowledgement only.
type AdjustmentService struct {
	txScope        TransactionScope
	ledger         *StockLedger
	adjustmentRepo inventory.StockAdjustmentRepository
	logger         *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(txScope TransactionScope, ledger *StockLedger, adjustmentRepo inventory.StockAdjustmentRepository, logger *zap.Logger) *AdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		txScope:        txScope,
		ledger:         ledger,
		adjustmentRepo: adjustmentRepo,
		logger:         logger,
	}
}

// AddStockAdjustment validates, applies and records an adjustment in one
// transaction. A decrease that would take a scope below zero fails the whole
// adjustment.
func (s *AdjustmentService) AddStockAdjustment(ctx context.Context, req CreateStockAdjustmentRequest, actor shared.Actor) (*StockAdjustmentResponse, error) {
	items := make([]inventory.AdjustmentItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = inventory.AdjustmentItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			AdjustmentType: inventory.AdjustmentType(item.AdjustmentType),
			Reason:         item.Reason,
		}
	}
	date := time.Time{}
	if req.AdjustmentDate != nil {
		date = *req.AdjustmentDate
	}

	var (
		adjustment *inventory.StockAdjustment
		movements  []*Movement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements = movements[:0]
		store, err := findStore(ctx, repos, req.StoreID)
		if err != nil {
			return err
		}
		adjustment, err = inventory.NewStockAdjustment(store.ID, store.Name, date, items, req.Notes)
		if err != nil {
			return err
		}
		storeID := store.ID
		for i := range adjustment.Items {
			item := &adjustment.Items[i]
			m, err := s.ledger.MoveStock(ctx, repos, StockChange{
				ProductID:   item.ProductID,
				StoreID:     &storeID,
				HistoryType: item.AdjustmentType.HistoryType(),
				ReferenceID: adjustment.ID,
				Reason:      item.Reason,
				Actor:       actor,
			}, item.AdjustmentType.SignedQuantity(item.Quantity))
			if err != nil {
				return err
			}
			item.ProductName = m.Product.Name
			movements = append(movements, m)
		}
		adjustment.MarkApplied(actor)
		return repos.AdjustmentRepo().Save(ctx, adjustment)
	})
	if err != nil {
		s.logger.Warn("stock adjustment failed",
			zap.String("store_id", req.StoreID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.ledger.Published(ctx, EntriesOf(movements)...)
	s.logger.Info("stock adjustment applied",
		zap.String("adjustment_id", adjustment.ID.String()),
		zap.String("store_id", adjustment.StoreID.String()),
		zap.Int("items", len(adjustment.Items)),
	)
	resp := ToStockAdjustmentResponse(adjustment)
	return &resp, nil
}

// ApproveStockAdjustment acknowledges an adjustment. Adjustments are applied
// at creation, so this never moves stock; it returns the recorded adjustment.
func (s *AdjustmentService) ApproveStockAdjustment(ctx context.Context, id uuid.UUID) (*StockAdjustmentResponse, error) {
	adjustment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock adjustment already applied",
		zap.String("adjustment_id", id.String()),
	)
	resp := ToStockAdjustmentResponse(adjustment)
	return &resp, nil
}

// GetByID returns one adjustment
func (s *AdjustmentService) GetByID(ctx context.Context, id uuid.UUID) (*StockAdjustmentResponse, error) {
	adjustment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockAdjustmentResponse(adjustment)
	return &resp, nil
}

// List lists adjustments
func (s *AdjustmentService) List(ctx context.Context, filter AdjustmentListFilter) ([]StockAdjustmentResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	if filter.StoreID != nil {
		f.Filters["store_id"] = *filter.StoreID
	}
	adjustments, err := s.adjustmentRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock adjustments: %w", err)
	}
	total, err := s.adjustmentRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count stock adjustments: %w", err)
	}
	out := make([]StockAdjustmentResponse, len(adjustments))
	for i := range adjustments {
		out[i] = ToStockAdjustmentResponse(&adjustments[i])
	}
	return out, total, nil
}

func (s *AdjustmentService) find(ctx context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	adjustment, err := s.adjustmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Stock adjustment", id)
		}
		return nil, err
	}
	return adjustment, nil
}
