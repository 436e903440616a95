package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations.
// Orders never move stock; their goods arrive through GRNs.
type PurchaseOrderService struct {
	orderRepo    trade.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create creates a new pending purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	exists, err := s.orderRepo.ExistsByReferenceNo(ctx, req.ReferenceNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Purchase order with this reference number already exists")
	}

	supplier, err := findSupplier(ctx, s.supplierRepo, req.SupplierID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}
	names, err := productNames(ctx, s.productRepo, ids)
	if err != nil {
		return nil, err
	}

	items := make([]trade.PurchaseOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = trade.PurchaseOrderItem{
			ProductID:   item.ProductID,
			ProductName: names[item.ProductID],
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
		}
	}

	orderDate := time.Time{}
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := trade.NewPurchaseOrder(req.ReferenceNo, supplier.ID, supplier.Name, orderDate, items)
	if err != nil {
		return nil, err
	}
	order.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	order.Notes = req.Notes

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("purchase order created",
		zap.String("purchase_order_id", order.ID.String()),
		zap.String("reference_no", order.ReferenceNo),
		zap.String("total_value", order.TotalValue.StringFixed(2)),
	)
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID returns a purchase order
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Purchase order", id)
		}
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List lists purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	f.Search = filter.Search
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.SupplierID != nil {
		f.Filters["supplier_id"] = *filter.SupplierID
	}
	orders, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, total, nil
}

// Cancel cancels a pending purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Purchase order", id)
		}
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("purchase order cancelled", zap.String("purchase_order_id", order.ID.String()))
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func findSupplier(ctx context.Context, repo partner.SupplierRepository, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Supplier", id)
		}
		return nil, fmt.Errorf("load supplier %s: %w", id, err)
	}
	return supplier, nil
}

// productNames resolves the display name of every product, failing on the
// first unknown id
func productNames(ctx context.Context, repo catalog.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	products, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, shared.NotFoundError("Product", id)
		}
	}
	return names, nil
}
