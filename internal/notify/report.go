package notify

import "time"

// Job names, also used as run store keys and trigger paths
const (
	JobDailySummary       = "daily-summary"
	JobNotificationDigest = "notification-digest"
	JobRFIDeadline        = "rfi-deadline-check"
	JobApprovalReminder   = "approval-reminder-check"
)

// Jobs lists every notification job
var Jobs = []string{JobDailySummary, JobNotificationDigest, JobRFIDeadline, JobApprovalReminder}

// Status is the outcome recorded for a recipient or a project
type Status string

const (
	StatusSent      Status = "sent"
	StatusSkipped   Status = "skipped"
	StatusError     Status = "error"
	StatusAuthError Status = "auth_error"
)

// Reasons a project is skipped
const (
	ReasonNoActivity = "no_activity"
	ReasonNoAdmins   = "no_admins"
	ReasonNothingDue = "nothing_due"
)

// Result is one outcome record. Recipient outcomes carry email and language;
// project-level outcomes carry a reason or an error.
type Result struct {
	Project  string `json:"project"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language,omitempty"`
	Status   Status `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates the outcomes of one job run
type Report struct {
	RunID         string    `json:"run_id"`
	Job           string    `json:"job"`
	SummaryDate   string    `json:"summary_date"`
	TotalProjects int       `json:"total_projects"`
	Sent          int       `json:"sent"`
	Skipped       int       `json:"skipped"`
	Errors        int       `json:"errors"`
	AuthErrors    int       `json:"auth_errors"`
	Results       []Result  `json:"results"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

func (r *Report) add(res Result) {
	switch res.Status {
	case StatusSent:
		r.Sent++
	case StatusSkipped:
		r.Skipped++
	case StatusError:
		r.Errors++
	case StatusAuthError:
		r.AuthErrors++
	}
	r.Results = append(r.Results, res)
}
