package router

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"builderops-notify/internal/handler"
)

// SetupRouter configures the Gin router with routes and middleware.
// Metrics registered with gatherer are served at /metrics.
func SetupRouter(h *handler.Handlers, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware(gin.DefaultWriter))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	h.SetupRoutes(r)
	return r
}

func loggerMiddleware(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{Formatter: formatRequest, Output: out})
}

// formatRequest writes one access log line. Trigger requests also carry the
// job and run id the handler stored on the context.
func formatRequest(param gin.LogFormatterParams) string {
	line := fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"",
		param.ClientIP,
		param.TimeStamp.Format(time.RFC1123),
		param.Method,
		param.Path,
		param.Request.Proto,
		param.StatusCode,
		param.Latency,
		param.Request.UserAgent(),
		param.ErrorMessage,
	)
	if job, ok := param.Keys[handler.LogKeyJob]; ok {
		line += fmt.Sprintf(" job=%v", job)
	}
	if runID, ok := param.Keys[handler.LogKeyRunID]; ok {
		line += fmt.Sprintf(" run_id=%v", runID)
	}
	return line + "\n"
}
