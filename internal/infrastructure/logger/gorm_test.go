package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogModeReturnsCopy(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info)
	quiet := gl.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, gormlogger.Silent, quiet.level)
}

func TestGormLogger_TraceError(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := WithRequestID(context.Background(), "req-9")

	gl.Trace(ctx, time.Now(), statement("UPDATE products SET stock = 3", 0), errors.New("database is locked"))

	entries := recorded.FilterMessage("sql error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
}

func TestGormLogger_TraceIgnoresRecordNotFound(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Trace(context.Background(), time.Now(), statement("SELECT 1", 0), gormlogger.ErrRecordNotFound)

	assert.Zero(t, recorded.Len())
}

func TestGormLogger_TraceSlow(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), statement("SELECT * FROM sales", 10), nil)

	assert.Equal(t, 1, recorded.FilterMessage("slow sql").Len())
}

func TestGormLogger_TraceStripsLiterals(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), statement("SELECT * FROM products WHERE sku = 'SKU-1'", 1), nil)

	entries := recorded.FilterMessage("sql").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT * FROM products WHERE sku = ?", entries[0].ContextMap()["sql"])
}

func TestGormLogger_FullSQL(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithFullSQL(true))

	gl.Trace(context.Background(), time.Now(), statement("SELECT 'x'", 1), nil)

	assert.Equal(t, "SELECT 'x'", recorded.All()[0].ContextMap()["sql"])
}

func TestGormLogger_SilentLogsNothing(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), statement("SELECT 1", 1), errors.New("x"))
	gl.Error(context.Background(), "boom")

	assert.Zero(t, recorded.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}
