package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/http/response"
	"github.com/meannnn/MindM/internal/platform/ctxutil"
	"github.com/meannnn/MindM/internal/platform/logger"
)

// Recover turns a handler panic into a generic 500 and logs the stack.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if log != nil {
				log.Error("panic recovered",
					"request_id", ctxutil.RequestID(c.Request.Context()),
					"path", c.Request.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
			}
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.RespondFailure(c, http.StatusInternalServerError, "internal_error", response.GenericMessage)
			c.Abort()
		}()
		c.Next()
	}
}
