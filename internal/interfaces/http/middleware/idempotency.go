package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"
	maxIdempotencyKeyLength   = 255
	defaultIdempotencyTTL     = 24 * time.Hour
)

// IdempotencyConfig configures the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// captureWriter tees the response body so it can be stored for replay
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes retried POSTs safe. The first request carrying a key runs
// and, on a 2xx, its response is stored; later requests with the same key get
// the stored response back. A retry that arrives while the first is still
// running gets 409. Failed requests release the key so the client can retry.
// Requests without the header pass through untouched.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		reqLog := logger.Enrich(ctx, log).With(zap.String("idempotency_key", key))
		scoped := c.Request.Method + " " + c.FullPath() + " " + key

		reserved, err := cfg.Store.Reserve(ctx, scoped, ttl)
		if err != nil {
			reqLog.Error("idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal, "Idempotency store unavailable", GetRequestID(c)))
			return
		}

		if !reserved {
			record, err := cfg.Store.Lookup(ctx, scoped)
			if err != nil {
				reqLog.Error("idempotency lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal, "Idempotency store unavailable", GetRequestID(c)))
				return
			}
			if record != nil && record.Completed {
				reqLog.Info("replaying stored response", zap.Int("status", record.StatusCode))
				c.Header(IdempotencyReplayedHeader, "true")
				c.Data(record.StatusCode, "application/json; charset=utf-8", record.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConcurrencyConflict, "A request with this Idempotency-Key is already in progress", GetRequestID(c)))
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		// The client context may be gone by now; the bookkeeping must still land.
		bg := context.WithoutCancel(ctx)
		status := writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			record := shared.IdempotencyRecord{StatusCode: status, Body: writer.body.Bytes()}
			if err := cfg.Store.Complete(bg, scoped, record, ttl); err != nil {
				reqLog.Error("failed to store idempotent response", zap.Error(err))
			}
			return
		}
		if err := cfg.Store.Release(bg, scoped); err != nil {
			reqLog.Warn("failed to release idempotency key", zap.Error(err))
		}
	}
}
