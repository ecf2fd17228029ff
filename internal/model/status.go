package model

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// ApprovalStatus is the review state of an equipment or material submission
type ApprovalStatus string

const (
	ApprovalStatusDraft            ApprovalStatus = "draft"
	ApprovalStatusPendingReview    ApprovalStatus = "pending_review"
	ApprovalStatusApproved         ApprovalStatus = "approved"
	ApprovalStatusRejected         ApprovalStatus = "rejected"
	ApprovalStatusRevisionRequired ApprovalStatus = "revision_required"
)

// InspectionStatus is the state of a scheduled inspection
type InspectionStatus string

const (
	InspectionStatusScheduled  InspectionStatus = "scheduled"
	InspectionStatusInProgress InspectionStatus = "in_progress"
	InspectionStatusCompleted  InspectionStatus = "completed"
	InspectionStatusCancelled  InspectionStatus = "cancelled"
)

// RFIStatus is the state of a request for information
type RFIStatus string

const (
	RFIStatusDraft           RFIStatus = "draft"
	RFIStatusOpen            RFIStatus = "open"
	RFIStatusWaitingResponse RFIStatus = "waiting_response"
	RFIStatusAnswered        RFIStatus = "answered"
	RFIStatusClosed          RFIStatus = "closed"
)

// AwaitingResponse reports whether the RFI still needs an answer
func (s RFIStatus) AwaitingResponse() bool {
	return s == RFIStatusOpen || s == RFIStatusWaitingResponse
}

// RFIOpenStatuses are the statuses counted as unanswered
var RFIOpenStatuses = []RFIStatus{RFIStatusOpen, RFIStatusWaitingResponse}

// DefectStatus is the state of a defect
type DefectStatus string

const (
	DefectStatusOpen       DefectStatus = "open"
	DefectStatusInProgress DefectStatus = "in_progress"
	DefectStatusResolved   DefectStatus = "resolved"
	DefectStatusClosed     DefectStatus = "closed"
)

// DefectOpenStatuses are the statuses counted as still open
var DefectOpenStatuses = []DefectStatus{DefectStatusOpen, DefectStatusInProgress}

// DefectSeverity ranks defects
type DefectSeverity string

const (
	DefectSeverityLow      DefectSeverity = "low"
	DefectSeverityMedium   DefectSeverity = "medium"
	DefectSeverityHigh     DefectSeverity = "high"
	DefectSeverityCritical DefectSeverity = "critical"
)

// MemberRole is a user's role within one project
type MemberRole string

const (
	MemberRoleProjectAdmin MemberRole = "project_admin"
	MemberRoleContractor   MemberRole = "contractor"
	MemberRoleInspector    MemberRole = "inspector"
	MemberRoleViewer       MemberRole = "viewer"
)
