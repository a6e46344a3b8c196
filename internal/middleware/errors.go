package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/logging"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   apperr.Kind `json:"error"`
	Message string      `json:"message"`
}

// ErrorHandler turns the last error a handler attached with c.Error into a
// JSON response. Anything that is not an *apperr.Error is logged and reported
// as an internal error without its details.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
			logging.WithTrace(c.Request.Context(), logger).Error("request failed",
				zap.String("request_id", RequestID(c)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			appErr = apperr.Internal(err)
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(apperr.HTTPStatus(appErr.Kind), ErrorResponse{
			Error:   appErr.Kind,
			Message: appErr.Message,
		})
	}
}

// NotFound answers unknown API routes in the same shape as other errors.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
		Error:   apperr.KindNotFound,
		Message: "Route not found",
	})
}
