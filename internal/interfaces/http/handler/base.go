package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumescore/backend/internal/domain/shared"
	"github.com/resumescore/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the header carrying the caller's request ID.
const RequestIDKey = "X-Request-ID"

// BaseHandler provides the response helpers shared by all handlers.
// Versioned endpoints answer with the standard envelope; the legacy
// scoring endpoints answer with bare payloads and {"detail": ...}
// errors.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	// the RequestID middleware stores it; fall back to the raw header
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// Success answers 200 with the enveloped payload.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta answers 200 with the payload plus pagination meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created answers 201 with the enveloped payload.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent answers 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error answers with an enveloped error and the given status.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest answers 400.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound answers 404.
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError answers 500.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError answers 400 with per-field details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleDomainError maps a domain error onto an enveloped HTTP error.
// Anything that is not a DomainError becomes an opaque 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
}

// HandleDomainErrorDetail is HandleDomainError for the legacy scoring
// endpoints, which answer {"detail": message} without the envelope.
func (h *BaseHandler) HandleDomainErrorDetail(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, dto.DetailResponse{Detail: "An unexpected error occurred"})
		return
	}

	statusCode := dto.GetHTTPStatus(dto.NormalizeErrorCode(domainErr.Code))
	c.JSON(statusCode, dto.DetailResponse{Detail: domainErr.Message})
}
