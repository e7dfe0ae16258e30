package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
)

// ErrorBody is the JSON rendered for every failed request.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

// RenderError writes err as an ErrorBody with the status of its kind.
func RenderError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), ErrorBody{
		Success:   false,
		Error:     apperr.PublicMessage(err),
		Code:      apperr.Code(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorHandler renders the last error attached with c.Error when the handler
// has not written a response itself.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
		}
		RenderError(c, err)
	}
}

// NotFound answers unknown routes with a JSON 404.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		RenderError(c, apperr.NotFound("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}
