package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// DBMetrics records statement counts, durations and connection pool usage
type DBMetrics struct {
	queries  *Counter
	errors   *Counter
	duration *Histogram
}

// RegisterDBMetrics instruments db with statement metrics and observes the
// pool statistics of sqlDB on every collection.
func RegisterDBMetrics(db *gorm.DB, sqlDB *sql.DB, meter metric.Meter) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &DBMetrics{}
	var err error
	if m.queries, err = NewCounter(meter, "db_queries_total", "Executed SQL statements", "{statement}"); err != nil {
		return nil, err
	}
	if m.errors, err = NewCounter(meter, "db_query_errors_total", "Failed SQL statements", "{statement}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "db_query_duration_seconds", "SQL statement duration", "s", DBDurationBuckets...); err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	if err := registerAround(db, "pos_metrics", markQueryStart, m.record); err != nil {
		return nil, err
	}
	return m, nil
}

func observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Open connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, waits)
	return err
}

func (m *DBMetrics) record(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := []attribute.KeyValue{
		AttrDBOperation.String(operationOf(db.Statement.SQL.String())),
		AttrDBTable.String(db.Statement.Table),
	}
	m.queries.Add(ctx, 1, attrs...)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		m.errors.Add(ctx, 1, attrs...)
	}
	if elapsed, ok := queryElapsed(db); ok {
		m.duration.Record(ctx, elapsed.Seconds(), attrs...)
	}
}

// operationOf returns the leading SQL verb in lower case
func operationOf(statement string) string {
	statement = strings.TrimSpace(statement)
	if i := strings.IndexAny(statement, " \n\t"); i > 0 {
		statement = statement[:i]
	}
	switch op := strings.ToLower(statement); op {
	case "select", "insert", "update", "delete":
		return op
	case "":
		return "unknown"
	default:
		return "other"
	}
}
