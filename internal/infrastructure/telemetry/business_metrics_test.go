package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/pos/internal/domain/inventory"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *telemetry.BusinessMetrics) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return reader, bm
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, m.Name)
	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_StockMoved(t *testing.T) {
	reader, bm := newManualMeter(t)
	ctx := context.Background()
	store := uuid.New()

	bm.StockMoved(ctx, &inventory.HistoryEntry{Type: inventory.HistoryTypeSale, QuantityChange: -3, StoreID: &store})
	bm.StockMoved(ctx, &inventory.HistoryEntry{Type: inventory.HistoryTypeGRN, QuantityChange: 5})
	bm.StockMoved(ctx, nil)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumInt(t, metrics["pos_stock_movements_total"]))
	assert.Equal(t, int64(8), sumInt(t, metrics["pos_stock_units_moved_total"]))
}

func TestBusinessMetrics_SalesAndRefunds(t *testing.T) {
	reader, bm := newManualMeter(t)
	ctx := context.Background()
	store := uuid.New()

	bm.RecordSale(ctx, store, decimal.RequireFromString("12.50"), 3)
	bm.RecordSale(ctx, store, decimal.RequireFromString("7.50"), 1)
	bm.RecordRefund(ctx, store, decimal.RequireFromString("2.50"))

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumInt(t, metrics["pos_sales_total"]))
	assert.Equal(t, int64(1), sumInt(t, metrics["pos_refunds_total"]))

	amount, ok := metrics["pos_sales_amount_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, amount.DataPoints, 1)
	assert.InDelta(t, 20.0, amount.DataPoints[0].Value, 0.0001)

	items, ok := metrics["pos_sale_items"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, items.DataPoints, 1)
	assert.Equal(t, uint64(2), items.DataPoints[0].Count)
}
