package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService runs the transfer-of-goods workflow
type TransferService struct {
	txScope      TransactionScope
	ledger       *StockLedger
	transferRepo inventory.TransferRepository
	productRepo  catalog.ProductRepository
	storeRepo    partner.StoreRepository
	logger       *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	txScope TransactionScope,
	ledger *StockLedger,
	transferRepo inventory.TransferRepository,
	productRepo catalog.ProductRepository,
	storeRepo partner.StoreRepository,
	logger *zap.Logger,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		txScope:      txScope,
		ledger:       ledger,
		transferRepo: transferRepo,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
		logger:       logger,
	}
}

// AddTransfer validates the stores and the source stock of every stock-tracked
// item, then records a pending transfer. No stock moves yet.
func (s *TransferService) AddTransfer(ctx context.Context, req CreateTransferRequest, actor shared.Actor) (*TransferResponse, error) {
	if req.FromStoreID == req.ToStoreID {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Source and destination stores must differ")
	}
	from, err := FindStore(ctx, s.storeRepo, req.FromStoreID)
	if err != nil {
		return nil, err
	}
	to, err := FindStore(ctx, s.storeRepo, req.ToStoreID)
	if err != nil {
		return nil, err
	}

	items := make([]inventory.TransferItem, len(req.Items))
	requested := make(map[uuid.UUID]int, len(req.Items))
	for i, item := range req.Items {
		items[i] = inventory.TransferItem{ProductID: item.ProductID, Quantity: item.Quantity}
		requested[item.ProductID] += item.Quantity
	}

	products, err := s.loadProducts(ctx, requested)
	if err != nil {
		return nil, err
	}
	fromID := from.ID
	for productID, qty := range requested {
		p := products[productID]
		if !p.TrackStock {
			continue
		}
		if available := p.EffectiveStock(&fromID); available < qty {
			return nil, shared.NewDomainErrorf(shared.CodeInsufficientStock,
				"Insufficient stock of %s at %s: available %d, requested %d", p.Name, from.Name, available, qty)
		}
	}
	for i := range items {
		items[i].ProductName = products[items[i].ProductID].Name
	}

	date := time.Time{}
	if req.TransferDate != nil {
		date = *req.TransferDate
	}
	transfer, err := inventory.NewTransfer(
		inventory.StoreRef{ID: from.ID, Name: from.Name},
		inventory.StoreRef{ID: to.ID, Name: to.Name},
		date, items, req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, transfer); err != nil {
		return nil, fmt.Errorf("save transfer: %w", err)
	}

	s.logger.Info("transfer created",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("from_store_id", from.ID.String()),
		zap.String("to_store_id", to.ID.String()),
		zap.String("user_id", actor.UserID),
	)
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// UpdateTransferStatus is the only mutator of a transfer. It applies the leg
// that belongs to the transition and stamps the new status in one
// transaction:
//
//	pending    -> in-transit  decrement source (TOG_OUT)
//	in-transit -> received    increment destination (TOG_IN)
//	pending    -> rejected    nothing moves
//	in-transit -> rejected    re-increment source (TOG_OUT, positive)
//
// Any other transition fails with INVALID_STATE and nothing changes.
func (s *TransferService) UpdateTransferStatus(ctx context.Context, id uuid.UUID, req UpdateTransferStatusRequest, actor shared.Actor) (*TransferResponse, error) {
	target := inventory.TransferStatus(req.Status)

	var (
		transfer  *inventory.Transfer
		movements []*Movement
		from      inventory.TransferStatus
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements = movements[:0]
		var err error
		transfer, err = repos.TransferRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFoundError("Transfer", id)
			}
			return err
		}
		from = transfer.Status
		if err := transfer.CheckTransition(target); err != nil {
			return err
		}

		var (
			storeID     uuid.UUID
			historyType inventory.HistoryType
			sign        int
		)
		switch target {
		case inventory.TransferStatusInTransit:
			if err := transfer.Dispatch(actor); err != nil {
				return err
			}
			storeID, historyType, sign = transfer.FromStoreID, inventory.HistoryTypeTransferOut, -1
		case inventory.TransferStatusReceived:
			if err := transfer.Receive(actor); err != nil {
				return err
			}
			storeID, historyType, sign = transfer.ToStoreID, inventory.HistoryTypeTransferIn, 1
		case inventory.TransferStatusRejected:
			reverse, err := transfer.Reject(actor, req.Reason)
			if err != nil {
				return err
			}
			if reverse {
				storeID, historyType, sign = transfer.FromStoreID, inventory.HistoryTypeTransferOut, 1
			}
		}

		if sign != 0 {
			for _, item := range transfer.Items {
				m, err := s.ledger.MoveStock(ctx, repos, StockChange{
					ProductID:   item.ProductID,
					StoreID:     &storeID,
					HistoryType: historyType,
					ReferenceID: transfer.ID,
					Reason:      legDescription(transfer, target),
					ProductName: item.ProductName,
					Actor:       actor,
				}, sign*item.Quantity)
				if err != nil {
					return err
				}
				movements = append(movements, m)
			}
		}
		return repos.TransferRepo().Save(ctx, transfer)
	})
	if err != nil {
		s.logger.Warn("transfer status update failed",
			zap.String("transfer_id", id.String()),
			zap.String("target_status", req.Status),
			zap.Error(err),
		)
		return nil, err
	}

	s.ledger.Published(ctx, EntriesOf(movements)...)
	s.logger.Info("transfer status updated",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("from_status", from.String()),
		zap.String("to_status", transfer.Status.String()),
	)
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// GetByID returns one transfer
func (s *TransferService) GetByID(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Transfer", id)
		}
		return nil, err
	}
	resp := ToTransferResponse(transfer)
	return &resp, nil
}

// List lists transfers
func (s *TransferService) List(ctx context.Context, filter TransferListFilter) ([]TransferResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	if filter.Status != "" {
		status := inventory.TransferStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown transfer status %q", filter.Status)
		}
		f.Filters["status"] = status
	}
	if filter.StoreID != nil {
		f.Filters["store_id"] = *filter.StoreID
	}
	transfers, err := s.transferRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	total, err := s.transferRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out, total, nil
}

func (s *TransferService) loadProducts(ctx context.Context, requested map[uuid.UUID]int) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load transfer products: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NotFoundError("Product", id)
		}
	}
	return byID, nil
}

func legDescription(t *inventory.Transfer, target inventory.TransferStatus) string {
	switch target {
	case inventory.TransferStatusInTransit:
		return fmt.Sprintf("Transfer to %s dispatched", t.ToStoreName)
	case inventory.TransferStatusReceived:
		return fmt.Sprintf("Transfer from %s received", t.FromStoreName)
	}
	return fmt.Sprintf("Transfer to %s rejected, goods returned", t.ToStoreName)
}
