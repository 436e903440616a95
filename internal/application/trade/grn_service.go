package trade

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GRNService records goods received notes and approves them into stock
type GRNService struct {
	txScope      appinventory.TransactionScope
	ledger       *appinventory.StockLedger
	grnRepo      trade.GoodsReceivedNoteRepository
	orderRepo    trade.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	storeRepo    partner.StoreRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewGRNService creates a new GRNService
func NewGRNService(
	txScope appinventory.TransactionScope,
	ledger *appinventory.StockLedger,
	grnRepo trade.GoodsReceivedNoteRepository,
	orderRepo trade.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	storeRepo partner.StoreRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *GRNService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRNService{
		txScope:      txScope,
		ledger:       ledger,
		grnRepo:      grnRepo,
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		storeRepo:    storeRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create records a pending GRN. A GRN linked to a purchase order takes the
// order's supplier, and its lines when none are given.
func (s *GRNService) Create(ctx context.Context, req CreateGRNRequest) (*GRNResponse, error) {
	exists, err := s.grnRepo.ExistsByReferenceNo(ctx, req.ReferenceNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "GRN with this reference number already exists")
	}

	store, err := appinventory.FindStore(ctx, s.storeRepo, req.ReceivingStoreID)
	if err != nil {
		return nil, err
	}

	var (
		order      *trade.PurchaseOrder
		supplierID uuid.UUID
	)
	if req.PurchaseOrderID != nil {
		order, err = s.orderRepo.FindByID(ctx, *req.PurchaseOrderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NotFoundError("Purchase order", *req.PurchaseOrderID)
			}
			return nil, err
		}
		if order.Status != trade.PurchaseOrderStatusPending {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidState,
				"Purchase order %s is %s and cannot receive goods", order.ReferenceNo, order.Status)
		}
		supplierID = order.SupplierID
	} else if req.SupplierID != nil {
		supplierID = *req.SupplierID
	} else {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "A supplier or purchase order is required")
	}
	supplier, err := findSupplier(ctx, s.supplierRepo, supplierID)
	if err != nil {
		return nil, err
	}

	items, err := s.receivedItems(ctx, req.Items, order)
	if err != nil {
		return nil, err
	}

	receivedDate := time.Time{}
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}
	grn, err := trade.NewGoodsReceivedNote(trade.GRNHeader{
		ReferenceNo:        req.ReferenceNo,
		PurchaseOrderID:    req.PurchaseOrderID,
		SupplierID:         supplier.ID,
		SupplierName:       supplier.Name,
		ReceivedDate:       receivedDate,
		ReceivingStoreID:   store.ID,
		ReceivingStoreName: store.Name,
		Notes:              req.Notes,
	}, items)
	if err != nil {
		return nil, err
	}
	if err := s.grnRepo.Save(ctx, grn); err != nil {
		return nil, err
	}

	s.logger.Info("GRN recorded",
		zap.String("grn_id", grn.ID.String()),
		zap.String("reference_no", grn.ReferenceNo),
		zap.String("store_id", store.ID.String()),
	)
	response := ToGRNResponse(grn)
	return &response, nil
}

// ApproveGRN receives the goods into the receiving store. The pending check,
// every stock increase, the purchase order completion, the approval stamp
// and the journal posting commit together; any failure leaves the GRN
// pending with no stock moved, so approval can simply be retried.
func (s *GRNService) ApproveGRN(ctx context.Context, id uuid.UUID, actor shared.Actor) (*GRNResponse, error) {
	var (
		grn       *trade.GoodsReceivedNote
		movements []*appinventory.Movement
	)
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		movements = movements[:0]
		var err error
		grn, err = repos.GRNRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFoundError("GRN", id)
			}
			return err
		}
		if err := grn.EnsurePending(); err != nil {
			return err
		}
		store, err := appinventory.FindStore(ctx, repos.StoreRepo(), grn.ReceivingStoreID)
		if err != nil {
			return err
		}

		storeID := store.ID
		for _, item := range grn.Items {
			m, err := s.ledger.MoveStock(ctx, repos, appinventory.StockChange{
				ProductID:   item.ProductID,
				StoreID:     &storeID,
				HistoryType: inventory.HistoryTypeGRN,
				ReferenceID: grn.ID,
				Reason:      "Goods received, " + grn.ReferenceNo,
				ProductName: item.ProductName,
				Actor:       actor,
			}, item.QuantityReceived)
			if err != nil {
				return err
			}
			movements = append(movements, m)
		}

		if grn.PurchaseOrderID != nil {
			if err := completeOrder(ctx, repos, *grn.PurchaseOrderID); err != nil {
				return err
			}
		}

		if err := grn.Approve(actor); err != nil {
			return err
		}
		if err := repos.GRNRepo().Save(ctx, grn); err != nil {
			return err
		}
		return postGRN(ctx, repos, grn, actor)
	})
	if err != nil {
		s.logger.Warn("GRN approval failed",
			zap.String("grn_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.ledger.Published(ctx, appinventory.EntriesOf(movements)...)
	s.logger.Info("GRN approved",
		zap.String("grn_id", grn.ID.String()),
		zap.Int("items", len(grn.Items)),
		zap.String("total_value", grn.TotalValue.StringFixed(2)),
	)
	response := ToGRNResponse(grn)
	return &response, nil
}

// GetByID returns a GRN
func (s *GRNService) GetByID(ctx context.Context, id uuid.UUID) (*GRNResponse, error) {
	grn, err := s.grnRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("GRN", id)
		}
		return nil, err
	}
	response := ToGRNResponse(grn)
	return &response, nil
}

// List lists GRNs
func (s *GRNService) List(ctx context.Context, filter GRNListFilter) ([]GRNResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.PurchaseOrderID != nil {
		f.Filters["purchase_order_id"] = *filter.PurchaseOrderID
	}
	if filter.StoreID != nil {
		f.Filters["receiving_store_id"] = *filter.StoreID
	}
	grns, err := s.grnRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.grnRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]GRNResponse, len(grns))
	for i := range grns {
		out[i] = ToGRNResponse(&grns[i])
	}
	return out, total, nil
}

func (s *GRNService) receivedItems(ctx context.Context, in []CreateGRNItemInput, order *trade.PurchaseOrder) ([]trade.GRNItem, error) {
	if len(in) == 0 && order != nil {
		items := make([]trade.GRNItem, len(order.Items))
		for i, line := range order.Items {
			items[i] = trade.GRNItem{
				ProductID:        line.ProductID,
				ProductName:      line.ProductName,
				QuantityReceived: line.Quantity,
				UnitCost:         line.UnitCost,
			}
		}
		return items, nil
	}

	ids := make([]uuid.UUID, len(in))
	for i, item := range in {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]trade.GRNItem, len(in))
	for i, item := range in {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NotFoundError("Product", item.ProductID)
		}
		cost := p.Cost
		if order != nil {
			for _, line := range order.Items {
				if line.ProductID == item.ProductID {
					cost = line.UnitCost
					break
				}
			}
		}
		if item.UnitCost != nil {
			cost = *item.UnitCost
		}
		items[i] = trade.GRNItem{
			ProductID:        p.ID,
			ProductName:      p.Name,
			QuantityReceived: item.QuantityReceived,
			UnitCost:         cost,
		}
	}
	return items, nil
}

// completeOrder marks the purchase order behind an approved GRN completed.
// An order already completed by an earlier GRN stays as it is.
func completeOrder(ctx context.Context, repos appinventory.TransactionalRepositories, orderID uuid.UUID) error {
	order, err := repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFoundError("Purchase order", orderID)
		}
		return err
	}
	if order.Status == trade.PurchaseOrderStatusCompleted {
		return nil
	}
	if err := order.Complete(); err != nil {
		return err
	}
	return repos.PurchaseOrderRepo().Save(ctx, order)
}
