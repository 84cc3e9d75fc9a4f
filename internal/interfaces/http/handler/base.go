// Package handler contains the relay's HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/infrastructure/logger"
	"github.com/shiprelay/backend/internal/interfaces/http/dto"
	"github.com/shiprelay/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindJSON decodes the request body into obj and writes the error response
// when that fails. It reports whether the handler may continue.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &maxErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &validationErrs):
		middleware.HandleValidationError(c, err)
	default:
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Invalid request body", middleware.GetRequestID(c))
		c.JSON(http.StatusBadRequest, resp.WithDetails(err.Error()))
	}
	return false
}

// HandleError translates an application error into the error envelope.
// Upstream failures carry the upstream diagnostics in details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	statusCode := dto.GetHTTPStatus(code)
	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)

	var upstreamErr *shared.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		resp = resp.WithDetails(upstreamErr.Details())
	case errors.Is(err, shared.ErrMalformedResponse):
		resp = resp.WithDetails(err.Error())
	}

	if statusCode >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed",
			zap.String("code", code),
			zap.Error(err))
	}
	c.JSON(statusCode, resp)
}
