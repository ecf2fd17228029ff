package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StartScheduler starts the in-process cron
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		logrus.WithError(err).Error("Failed to start scheduler")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to start scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler started successfully",
		"status":  "running",
	})
}

// StopScheduler stops the in-process cron
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to stop scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler stopped successfully",
		"status":  "stopped",
	})
}

// RunOnce runs one job through the scheduler immediately
func (h *Handlers) RunOnce(c *gin.Context) {
	job := c.Param("job")
	if !knownJob(job) {
		abortWithError(c, http.StatusNotFound, "unknown_job", "Unknown job "+job)
		return
	}

	report, err := h.scheduler.RunOnce(c.Request.Context(), job)
	if err != nil {
		h.runFailed(c, job, err)
		return
	}
	respondReport(c, report)
}

// GetSchedulerStatus returns the current scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, SchedulerStatusResponse{
		Status:  status,
		Entries: h.scheduler.Entries(),
	})
}
