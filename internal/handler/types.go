package handler

import (
	"time"

	"builderops-notify/internal/digest"
	"builderops-notify/internal/scheduler"
)

// SchedulerSecretHeader carries the shared secret of the external scheduler
const SchedulerSecretHeader = "X-Scheduler-Secret"

// Context keys the request logger appends to trigger requests
const (
	LogKeyJob   = "job"
	LogKeyRunID = "run_id"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Scheduler string    `json:"scheduler"`
}

// SchedulerStatusResponse lists the in-process cron state
type SchedulerStatusResponse struct {
	Status  string                `json:"status"`
	Entries []scheduler.EntryInfo `json:"entries"`
}

// PreviewResponse is the JSON form of a rendered summary
type PreviewResponse struct {
	Subject string               `json:"subject"`
	HTML    string               `json:"html"`
	Summary *digest.DailySummary `json:"summary"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
