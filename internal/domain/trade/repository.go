package trade

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByReferenceNo(ctx context.Context, referenceNo string) (bool, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}

// GoodsReceivedNoteRepository defines persistence for GRNs
type GoodsReceivedNoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceivedNote, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GoodsReceivedNote, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]GoodsReceivedNote, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByReferenceNo(ctx context.Context, referenceNo string) (bool, error)
	Save(ctx context.Context, grn *GoodsReceivedNote) error
}

// SaleRepository defines persistence for sales and their refunds
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, sale *Sale) error
	SaveRefund(ctx context.Context, refund *SaleRefund) error
	FindRefunds(ctx context.Context, saleID uuid.UUID) ([]SaleRefund, error)
}
