package trade

import (
	"context"
	"errors"
	"fmt"

	appinventory "github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesMetrics records committed sales and refunds
type SalesMetrics interface {
	RecordSale(ctx context.Context, storeID uuid.UUID, total decimal.Decimal, items int)
	RecordRefund(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal)
}

// SaleService settles point-of-sale checkouts and refunds
type SaleService struct {
	txScope  appinventory.TransactionScope
	ledger   *appinventory.StockLedger
	saleRepo trade.SaleRepository
	metrics  SalesMetrics
	logger   *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(txScope appinventory.TransactionScope, ledger *appinventory.StockLedger, saleRepo trade.SaleRepository, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		txScope:  txScope,
		ledger:   ledger,
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(m SalesMetrics) {
	s.metrics = m
}

// FinalizeSale settles a cart at one store. Every stock-tracked line is
// taken out of the store under a row lock, so two tills selling the last
// unit cannot both succeed; the loser gets INSUFFICIENT_STOCK and nothing of
// its sale is written.
func (s *SaleService) FinalizeSale(ctx context.Context, req FinalizeSaleRequest, actor shared.Actor) (*SaleResponse, error) {
	if req.StoreID == nil || *req.StoreID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Select a store before adding items to a sale")
	}
	lines := mergeCartLines(req.Items)

	var (
		sale      *trade.Sale
		movements []*appinventory.Movement
	)
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		movements = movements[:0]
		store, err := appinventory.FindStore(ctx, repos.StoreRepo(), *req.StoreID)
		if err != nil {
			return err
		}
		if !store.Active {
			return shared.NewDomainErrorf(shared.CodeValidationFailed, "Store %s is not active", store.Name)
		}

		items := make([]trade.SaleItem, len(lines))
		for i, line := range lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NotFoundError("Product", line.ProductID)
				}
				return err
			}
			if !product.CanBeSold() {
				return shared.NewDomainErrorf(shared.CodeValidationFailed, "%s is not available for sale", product.Name)
			}
			price := product.Price
			if line.UnitPrice != nil {
				price = *line.UnitPrice
			}
			items[i] = trade.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   price,
				UnitCost:    product.Cost,
				TrackStock:  product.TrackStock,
			}
		}

		sale, err = trade.NewSale(store.ID, store.Name, items, req.Discount, trade.PaymentMethod(req.PaymentMethod), actor)
		if err != nil {
			return err
		}

		storeID := store.ID
		for _, item := range sale.Items {
			if !item.TrackStock {
				continue
			}
			m, err := s.ledger.MoveStock(ctx, repos, appinventory.StockChange{
				ProductID:   item.ProductID,
				StoreID:     &storeID,
				HistoryType: inventory.HistoryTypeSale,
				ReferenceID: sale.ID,
				Reason:      "Sale " + sale.ReceiptNo,
				ProductName: item.ProductName,
				Actor:       actor,
			}, -item.Quantity)
			if err != nil {
				return err
			}
			movements = append(movements, m)
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		return postSale(ctx, repos, sale, actor)
	})
	if err != nil {
		s.logger.Warn("sale failed",
			zap.String("store_id", req.StoreID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.ledger.Published(ctx, appinventory.EntriesOf(movements)...)
	if s.metrics != nil {
		s.metrics.RecordSale(ctx, sale.StoreID, sale.Total, len(sale.Items))
	}
	s.logger.Info("sale finalized",
		zap.String("sale_id", sale.ID.String()),
		zap.String("receipt_no", sale.ReceiptNo),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	response := ToSaleResponse(sale)
	return &response, nil
}

// RefundSale puts returned goods back into the store that sold them
func (s *SaleService) RefundSale(ctx context.Context, saleID uuid.UUID, req RefundSaleRequest, actor shared.Actor) (*RefundResponse, error) {
	lines := make([]trade.RefundLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = trade.RefundLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var (
		sale      *trade.Sale
		refund    *trade.SaleRefund
		movements []*appinventory.Movement
	)
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		movements = movements[:0]
		var err error
		sale, err = repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFoundError("Sale", saleID)
			}
			return err
		}
		refund, err = sale.ApplyRefund(lines, req.Reason, actor)
		if err != nil {
			return err
		}

		storeID := sale.StoreID
		for _, item := range refund.Items {
			if !item.TrackStock {
				continue
			}
			m, err := s.ledger.MoveStock(ctx, repos, appinventory.StockChange{
				ProductID:   item.ProductID,
				StoreID:     &storeID,
				HistoryType: inventory.HistoryTypeRefund,
				ReferenceID: sale.ID,
				Reason:      "Refund on sale " + sale.ReceiptNo,
				ProductName: item.ProductName,
				Actor:       actor,
			}, item.Quantity)
			if err != nil {
				return err
			}
			movements = append(movements, m)
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		if err := repos.SaleRepo().SaveRefund(ctx, refund); err != nil {
			return fmt.Errorf("save refund: %w", err)
		}
		return postRefund(ctx, repos, sale, refund, actor)
	})
	if err != nil {
		s.logger.Warn("refund failed",
			zap.String("sale_id", saleID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.ledger.Published(ctx, appinventory.EntriesOf(movements)...)
	if s.metrics != nil {
		s.metrics.RecordRefund(ctx, sale.StoreID, refund.Amount)
	}
	s.logger.Info("sale refunded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("refund_id", refund.ID.String()),
		zap.String("amount", refund.Amount.StringFixed(2)),
	)
	response := ToRefundResponse(refund)
	saleResponse := ToSaleResponse(sale)
	response.Sale = &saleResponse
	return &response, nil
}

// GetByID returns a sale
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFoundError("Sale", id)
		}
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ListRefunds returns the refunds recorded against a sale
func (s *SaleService) ListRefunds(ctx context.Context, saleID uuid.UUID) ([]RefundResponse, error) {
	if _, err := s.GetByID(ctx, saleID); err != nil {
		return nil, err
	}
	refunds, err := s.saleRepo.FindRefunds(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]RefundResponse, len(refunds))
	for i := range refunds {
		out[i] = ToRefundResponse(&refunds[i])
	}
	return out, nil
}

// List lists sales
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	f := newFilter(filter.Page, filter.PageSize)
	f.OrderBy = "sale_date"
	if filter.StoreID != nil {
		f.Filters["store_id"] = *filter.StoreID
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.DateFrom != nil {
		f.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		f.Filters["date_to"] = *filter.DateTo
	}
	sales, err := s.saleRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = ToSaleResponse(&sales[i])
	}
	return out, total, nil
}

// mergeCartLines folds repeated products into one line, keeping the first
// explicit price
func mergeCartLines(in []SaleItemInput) []SaleItemInput {
	out := make([]SaleItemInput, 0, len(in))
	index := make(map[uuid.UUID]int, len(in))
	for _, line := range in {
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			if out[i].UnitPrice == nil {
				out[i].UnitPrice = line.UnitPrice
			}
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}
