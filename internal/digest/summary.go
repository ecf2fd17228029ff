package digest

import "time"

// Window is a half-open UTC time range [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the UTC calendar day containing date
func DayWindow(date time.Time) Window {
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Day returns the start of the UTC day the window closes on. Summaries are
// dated by this day and live gauges are measured against it.
func (w Window) Day() time.Time {
	return DayWindow(w.End.Add(-time.Nanosecond)).Start
}

// AuditEntryCount is one (entity_type, action) group of the activity overview
type AuditEntryCount struct {
	EntityType string `json:"entity_type"`
	Action     string `json:"action"`
	Count      int64  `json:"count"`
}

// ApprovalStats counts submissions created, approved and rejected in a window.
// An item created and approved on the same day is counted in both.
type ApprovalStats struct {
	Created  int64 `json:"created"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// IsZero reports whether every count is zero
func (s ApprovalStats) IsZero() bool {
	return s.Created == 0 && s.Approved == 0 && s.Rejected == 0
}

// InspectionStats counts completed inspections and new findings
type InspectionStats struct {
	Completed int64 `json:"completed"`
	Findings  int64 `json:"findings"`
}

// IsZero reports whether every count is zero
func (s InspectionStats) IsZero() bool {
	return s.Completed == 0 && s.Findings == 0
}

// RFIStats counts RFI transitions in a window. Overdue is a live count.
type RFIStats struct {
	Opened   int64 `json:"opened"`
	Answered int64 `json:"answered"`
	Closed   int64 `json:"closed"`
	Overdue  int64 `json:"overdue"`
}

// IsZero reports whether every count is zero
func (s RFIStats) IsZero() bool {
	return s.Opened == 0 && s.Answered == 0 && s.Closed == 0 && s.Overdue == 0
}

// DefectStats counts new and resolved defects. CriticalOpen is a live gauge.
type DefectStats struct {
	New          int64 `json:"new"`
	Resolved     int64 `json:"resolved"`
	CriticalOpen int64 `json:"critical_open"`
}

// IsZero reports whether every count is zero
func (s DefectStats) IsZero() bool {
	return s.New == 0 && s.Resolved == 0 && s.CriticalOpen == 0
}

// MeetingInfo is an upcoming meeting listed in the summary
type MeetingInfo struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// DailySummary is the per-project activity aggregate. It is built fresh for
// every run and never persisted.
type DailySummary struct {
	ProjectID        uint              `json:"project_id"`
	SummaryDate      time.Time         `json:"summary_date"`
	Window           Window            `json:"-"`
	HasActivity      bool              `json:"has_activity"`
	AuditEntries     []AuditEntryCount `json:"audit_entries"`
	Equipment        ApprovalStats     `json:"equipment"`
	Materials        ApprovalStats     `json:"materials"`
	Inspections      InspectionStats   `json:"inspections"`
	RFIs             RFIStats          `json:"rfis"`
	Defects          DefectStats       `json:"defects"`
	PendingApprovals int64             `json:"pending_approvals"`
	UpcomingMeetings []MeetingInfo     `json:"upcoming_meetings"`
	OverallProgress  float64           `json:"overall_progress"`
}

// DetectActivity applies the has-activity gate. Rejections, overdue RFIs,
// pending approvals and open critical defects do not count as activity.
func DetectActivity(s *DailySummary) bool {
	return len(s.AuditEntries) > 0 ||
		s.Equipment.Created > 0 ||
		s.Materials.Created > 0 ||
		s.Inspections.Completed > 0 ||
		s.RFIs.Opened > 0 ||
		s.RFIs.Answered > 0 ||
		s.RFIs.Closed > 0 ||
		s.Defects.New > 0 ||
		s.Defects.Resolved > 0
}
