package telemetry

import (
	"context"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// storeAggregate labels movements that are not tied to a store
const storeAggregate = "aggregate"

// BusinessMetrics counts committed stock movements, sales and refunds. It is
// notified by the stock ledger and the sale workflow after commit.
type BusinessMetrics struct {
	movements    *Counter
	unitsMoved   *Counter
	sales        *Counter
	salesAmount  *FloatCounter
	saleItems    *Histogram
	refunds      *Counter
	refundAmount *FloatCounter
}

// NewBusinessMetrics registers the business instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error
	if bm.movements, err = NewCounter(meter, "pos_stock_movements_total", "Committed stock history entries", "{entry}"); err != nil {
		return nil, err
	}
	if bm.unitsMoved, err = NewCounter(meter, "pos_stock_units_moved_total", "Absolute units moved by committed stock entries", "{unit}"); err != nil {
		return nil, err
	}
	if bm.sales, err = NewCounter(meter, "pos_sales_total", "Finalized sales", "{sale}"); err != nil {
		return nil, err
	}
	if bm.salesAmount, err = NewFloatCounter(meter, "pos_sales_amount_total", "Gross value of finalized sales", "{currency}"); err != nil {
		return nil, err
	}
	if bm.saleItems, err = NewHistogram(meter, "pos_sale_items", "Line items per finalized sale", "{item}", 1, 2, 3, 5, 10, 20, 50); err != nil {
		return nil, err
	}
	if bm.refunds, err = NewCounter(meter, "pos_refunds_total", "Recorded refunds", "{refund}"); err != nil {
		return nil, err
	}
	if bm.refundAmount, err = NewFloatCounter(meter, "pos_refund_amount_total", "Value of recorded refunds", "{currency}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// StockMoved records one committed history entry
func (bm *BusinessMetrics) StockMoved(ctx context.Context, entry *inventory.HistoryEntry) {
	if entry == nil {
		return
	}
	direction := "in"
	units := entry.QuantityChange
	if units < 0 {
		direction = "out"
		units = -units
	}
	attrs := []attribute.KeyValue{
		AttrHistoryType.String(string(entry.Type)),
		AttrStoreID.String(storeLabel(entry.StoreID)),
	}
	bm.movements.Add(ctx, 1, attrs...)
	bm.unitsMoved.Add(ctx, int64(units), append(attrs, AttrDirection.String(direction))...)
}

// RecordSale records one finalized sale
func (bm *BusinessMetrics) RecordSale(ctx context.Context, storeID uuid.UUID, total decimal.Decimal, items int) {
	store := AttrStoreID.String(storeID.String())
	bm.sales.Add(ctx, 1, store)
	bm.salesAmount.Add(ctx, total.InexactFloat64(), store)
	bm.saleItems.Record(ctx, float64(items), store)
}

// RecordRefund records one refund
func (bm *BusinessMetrics) RecordRefund(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) {
	store := AttrStoreID.String(storeID.String())
	bm.refunds.Add(ctx, 1, store)
	bm.refundAmount.Add(ctx, amount.InexactFloat64(), store)
}

func storeLabel(storeID *uuid.UUID) string {
	if storeID == nil {
		return storeAggregate
	}
	return storeID.String()
}
