package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/pdfengine/internal/domain/shared"
	"github.com/erp/pdfengine/internal/infrastructure/logger"
	"github.com/erp/pdfengine/internal/infrastructure/printing"
	"github.com/erp/pdfengine/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler writes the JSON envelope shared by all handlers
type BaseHandler struct{}

// Success answers 200 with data
func (BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// HandleError answers err with the status of its error code. Domain and
// render errors keep their message. Anything else is answered 500 without
// its text. 5xx answers are logged with the cause.
func (BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code, message := classify(err)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed",
			zap.Int("status", status),
			zap.String("code", code),
			zap.Error(err))
	}
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID(c)))
}

func classify(err error) (code, message string) {
	var (
		domainErr *shared.DomainError
		renderErr *printing.RenderError
	)
	switch {
	case errors.As(err, &domainErr):
		return dto.NormalizeErrorCode(domainErr.Code), domainErr.Message
	case errors.As(err, &renderErr):
		return dto.NormalizeRenderErrorCode(renderErr.Code), renderErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return dto.ErrCodeRenderTimeout, "The request timed out"
	default:
		return dto.ErrCodeInternal, "An unexpected error occurred"
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}
