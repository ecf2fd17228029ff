package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"builderops-notify/internal/notify"
	"builderops-notify/internal/render"
	"builderops-notify/internal/repository"
	"builderops-notify/internal/runstore"
)

const dateLayout = "2006-01-02"

// summaryDate parses the optional summary_date query parameter, defaulting
// to the dispatcher's current day
func (h *Handlers) summaryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("summary_date")
	if raw == "" {
		return h.dispatcher.Now(), true
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_summary_date", "summary_date must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// DailySummary sends the daily summary for summary_date
func (h *Handlers) DailySummary(c *gin.Context) {
	date, ok := h.summaryDate(c)
	if !ok {
		return
	}

	report, err := h.dispatcher.RunDailySummary(c.Request.Context(), date)
	if err != nil {
		h.runFailed(c, notify.JobDailySummary, err)
		return
	}
	respondReport(c, report)
}

func (h *Handlers) trigger(job string) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := h.dispatcher.Run(c.Request.Context(), job)
		if err != nil {
			h.runFailed(c, job, err)
			return
		}
		respondReport(c, report)
	}
}

// respondReport tags the request log with the run and writes the report
func respondReport(c *gin.Context, report *notify.Report) {
	c.Set(LogKeyJob, report.Job)
	c.Set(LogKeyRunID, report.RunID)
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) runFailed(c *gin.Context, job string, err error) {
	c.Set(LogKeyJob, job)
	logrus.WithError(err).WithField("job", job).Error("Notification run failed")
	abortWithError(c, http.StatusInternalServerError, "run_failed", "Failed to run "+job)
}

// GetLastRun returns the last stored report of a job
func (h *Handlers) GetLastRun(c *gin.Context) {
	job := c.Param("job")
	if !knownJob(job) {
		abortWithError(c, http.StatusNotFound, "unknown_job", "Unknown job "+job)
		return
	}

	data, err := h.runs.Load(c.Request.Context(), job)
	if errors.Is(err, runstore.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "not_found", "No run recorded for "+job)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("job", job).Error("Failed to load run report")
		abortWithError(c, http.StatusInternalServerError, "runstore_error", "Failed to load run report")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// PreviewDailySummary renders a project's daily summary without sending it.
// format=json returns the subject and summary alongside the HTML.
func (h *Handlers) PreviewDailySummary(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_id", "Invalid project ID")
		return
	}
	date, ok := h.summaryDate(c)
	if !ok {
		return
	}
	lang := render.ResolveLanguage(c.Query("lang"))

	subject, body, summary, err := h.dispatcher.Preview(c.Request.Context(), uint(id), date, lang)
	if errors.Is(err, repository.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "not_found", "Project not found")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("project_id", id).Error("Failed to render preview")
		abortWithError(c, http.StatusInternalServerError, "preview_failed", "Failed to render daily summary")
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, PreviewResponse{Subject: subject, HTML: body, Summary: summary})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func knownJob(job string) bool {
	for _, j := range notify.Jobs {
		if j == job {
			return true
		}
	}
	return false
}
