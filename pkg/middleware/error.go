package middleware

import (
	"errors"
	"net/http"

	"deeplink-attribution/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached with c.Error. BaseError codes pick
// the HTTP status; anything else is a 500 without internals leaked.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var be errutil.BaseError
		if errors.As(last.Err, &be) {
			if be.Code.HTTPStatus() >= http.StatusInternalServerError {
				zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(last.Err))
			}
			c.JSON(be.Code.HTTPStatus(), Response{
				Success: false,
				Message: be.Message,
				Code:    string(be.Code),
				Details: be.Details,
			})
			return
		}

		zap.L().Error("unhandled request error", zap.String("path", c.FullPath()), zap.Error(last.Err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: "internal error",
			Code:    string(errutil.StatusInternal),
		})
	}
}
