package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/platform/ctxutil"
	"github.com/meannnn/MindM/internal/platform/logger"
)

// quietRoutes are logged at debug level on success; load balancers poll them.
var quietRoutes = map[string]bool{"/health": true}

// RequestLogger writes one line per request. Task and file ids from the route
// are included so a request line can be matched with the pipeline stage logs.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		for _, p := range []string{"task_id", "file_id"} {
			if v := c.Param(p); v != "" {
				kv = append(kv, p, v)
			}
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kv = append(kv, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		case quietRoutes[route]:
			log.Debug("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}
