package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"builderops-notify/internal/digest"
	"builderops-notify/internal/notify"
	"builderops-notify/internal/runstore"
	"builderops-notify/internal/scheduler"
)

// Dispatcher runs the notification jobs
type Dispatcher interface {
	RunDailySummary(ctx context.Context, date time.Time) (*notify.Report, error)
	Run(ctx context.Context, job string) (*notify.Report, error)
	Preview(ctx context.Context, projectID uint, date time.Time, lang string) (string, string, *digest.DailySummary, error)
	Now() time.Time
}

// Scheduler is the in-process cron
type Scheduler interface {
	Start() error
	Stop() error
	IsRunning() bool
	Entries() []scheduler.EntryInfo
	RunOnce(ctx context.Context, job string) (*notify.Report, error)
}

// Pinger checks database connectivity
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	db         Pinger
	dispatcher Dispatcher
	scheduler  Scheduler
	runs       runstore.Store
	secret     string
}

// NewHandlers creates new HTTP handlers. An empty secret rejects every
// guarded request.
func NewHandlers(db Pinger, dispatcher Dispatcher, sched Scheduler, runs runstore.Store, secret string) *Handlers {
	return &Handlers{
		db:         db,
		dispatcher: dispatcher,
		scheduler:  sched,
		runs:       runs,
		secret:     secret,
	}
}

// SetupRoutes sets up all HTTP routes except /metrics
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)

	triggers := router.Group("/", RequireSchedulerSecret(h.secret))
	{
		triggers.POST("/daily-summary", h.DailySummary)
		triggers.POST("/notification-digest", h.trigger(notify.JobNotificationDigest))
		triggers.POST("/rfi-deadline-check", h.trigger(notify.JobRFIDeadline))
		triggers.POST("/approval-reminder-check", h.trigger(notify.JobApprovalReminder))
	}

	api := router.Group("/api/v1", RequireSchedulerSecret(h.secret))
	{
		api.GET("/runs/:job", h.GetLastRun)
		api.GET("/projects/:id/daily-summary/preview", h.PreviewDailySummary)

		api.GET("/scheduler/status", h.GetSchedulerStatus)
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once/:job", h.RunOnce)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Database:  "ok",
		Scheduler: "stopped",
	}

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.WithError(err).Error("Database health check failed")
	}

	if h.scheduler.IsRunning() {
		response.Scheduler = "running"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
