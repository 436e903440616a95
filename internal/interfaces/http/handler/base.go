package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts an error into a response. Domain errors keep their
// code and message; anything else is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds and validates the request body; on failure the response is
// already written and false is returned.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Validate runs the binding rules of a filter built from the query string
func (h *BaseHandler) Validate(c *gin.Context, filter any) bool {
	if err := binding.Validator.ValidateStruct(filter); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// PathID parses a uuid path parameter; on failure a 400 is written
func (h *BaseHandler) PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// Actor returns the acting user for the request
func (h *BaseHandler) Actor(c *gin.Context) shared.Actor {
	return middleware.GetActor(c)
}

// query reads typed query parameters, remembering the first parse failure
type query struct {
	c   *gin.Context
	err error
}

func newQuery(c *gin.Context) *query {
	return &query{c: c}
}

func (q *query) fail(name string) {
	if q.err == nil {
		q.err = errors.New("invalid query parameter " + name)
	}
}

func (q *query) String(name string) string {
	return q.c.Query(name)
}

func (q *query) UUID(name string) *uuid.UUID {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &id
}

func (q *query) Int(name string) int {
	raw := q.c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name)
		return 0
	}
	return n
}

func (q *query) Bool(name string) *bool {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &b
}

func (q *query) Date(name string) *time.Time {
	raw := q.c.Query(name)
	if raw == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &d
}

// ok writes a 400 for the first parse failure and reports whether none occurred
func (q *query) ok(h *BaseHandler) bool {
	if q.err != nil {
		h.BadRequest(q.c, q.err.Error())
		return false
	}
	return true
}
