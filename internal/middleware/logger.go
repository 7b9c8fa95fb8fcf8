package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"reservehub/internal/pkg/logger"
	"reservehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorLogger recovers panics and writes one structured line per failed
// request: panics, 5xx responses and errors attached with c.Error.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(c, start, "panic", fmt.Sprint(recovered), "stack", string(debug.Stack()))
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}

			for _, err := range c.Errors {
				args := []any{}
				if err.Meta != nil {
					args = append(args, "meta", err.Meta)
				}
				logRequestError(c, start, fmt.Sprintf("%v", err.Type), err.Error(), args...)
			}
			if len(c.Errors) == 0 && c.Writer.Status() >= http.StatusInternalServerError {
				logRequestError(c, start, "http_error", http.StatusText(c.Writer.Status()))
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType, message string, extra ...any) {
	args := append([]any{
		"type", errType,
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
		"role", c.GetString("role"),
		"latency", time.Since(start).String(),
		"error", message,
	}, extra...)
	logger.ErrorContext(c.Request.Context(), "request_error", args...)
}
