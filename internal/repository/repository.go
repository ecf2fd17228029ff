package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"builderops-notify/internal/digest"
	"builderops-notify/internal/model"
)

// auditOverviewLimit caps the (entity_type, action) groups in the overview
const auditOverviewLimit = 50

// upcomingMeetingsLimit caps the meetings listed in a summary
const upcomingMeetingsLimit = 10

// ErrNotFound is returned when a looked-up row does not exist
var ErrNotFound = errors.New("record not found")

// Repository reads the BuilderOps tables. It implements digest.StatsSource.
type Repository struct {
	db *gorm.DB
}

// New creates a repository over db
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ digest.StatsSource = (*Repository)(nil)

func inWindow(column string) string {
	return column + " >= ? AND " + column + " < ?"
}

func (r *Repository) count(ctx context.Context, m interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(m).Where(query, args...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// AuditEntries groups in-window audit rows by entity type and action, largest first
func (r *Repository) AuditEntries(ctx context.Context, projectID uint, w digest.Window) ([]digest.AuditEntryCount, error) {
	entries := make([]digest.AuditEntryCount, 0)
	result := r.db.WithContext(ctx).Model(&model.AuditLog{}).
		Select("entity_type, action, COUNT(*) AS count").
		Where("project_id = ? AND "+inWindow("created_at"), projectID, w.Start, w.End).
		Group("entity_type, action").
		Order("count DESC, entity_type, action").
		Limit(auditOverviewLimit).
		Scan(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to group audit log: %w", result.Error)
	}
	return entries, nil
}

// ApprovalStats counts records created in the window and records approved or
// rejected with updated_at in the window. The counts are independent.
func (r *Repository) ApprovalStats(ctx context.Context, record model.ActivityRecord, projectID uint, w digest.Window) (digest.ApprovalStats, error) {
	var stats digest.ApprovalStats
	var err error

	if stats.Created, err = r.count(ctx, record,
		"project_id = ? AND "+inWindow("created_at"), projectID, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count created %s: %w", record.TableName(), err)
	}
	if stats.Approved, err = r.count(ctx, record,
		"project_id = ? AND status = ? AND "+inWindow("updated_at"),
		projectID, model.ApprovalStatusApproved, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count approved %s: %w", record.TableName(), err)
	}
	if stats.Rejected, err = r.count(ctx, record,
		"project_id = ? AND status = ? AND "+inWindow("updated_at"),
		projectID, model.ApprovalStatusRejected, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count rejected %s: %w", record.TableName(), err)
	}
	return stats, nil
}

// InspectionStats counts inspections completed in the window and findings
// recorded in the window on the project's inspections
func (r *Repository) InspectionStats(ctx context.Context, projectID uint, w digest.Window) (digest.InspectionStats, error) {
	var stats digest.InspectionStats
	var err error

	if stats.Completed, err = r.count(ctx, &model.Inspection{},
		"project_id = ? AND status = ? AND "+inWindow("completed_at"),
		projectID, model.InspectionStatusCompleted, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count completed inspections: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&model.InspectionFinding{}).
		Joins("JOIN inspections ON inspections.id = inspection_findings.inspection_id").
		Where("inspections.project_id = ? AND "+inWindow("inspection_findings.created_at"), projectID, w.Start, w.End).
		Count(&stats.Findings)
	if result.Error != nil {
		return stats, fmt.Errorf("failed to count inspection findings: %w", result.Error)
	}
	return stats, nil
}

// RFIStats counts RFI transitions in the window. Overdue is a live count of
// unanswered RFIs due before the summary day.
func (r *Repository) RFIStats(ctx context.Context, projectID uint, w digest.Window) (digest.RFIStats, error) {
	var stats digest.RFIStats
	var err error

	if stats.Opened, err = r.count(ctx, &model.RFI{},
		"project_id = ? AND status <> ? AND "+inWindow("created_at"),
		projectID, model.RFIStatusDraft, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count opened rfis: %w", err)
	}
	if stats.Answered, err = r.count(ctx, &model.RFI{},
		"project_id = ? AND status = ? AND "+inWindow("answered_at"),
		projectID, model.RFIStatusAnswered, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count answered rfis: %w", err)
	}
	if stats.Closed, err = r.count(ctx, &model.RFI{},
		"project_id = ? AND status = ? AND "+inWindow("closed_at"),
		projectID, model.RFIStatusClosed, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count closed rfis: %w", err)
	}
	if stats.Overdue, err = r.OverdueRFIs(ctx, projectID, w.Day()); err != nil {
		return stats, err
	}
	return stats, nil
}

// OverdueRFIs counts open or waiting RFIs whose due date precedes dayStart
func (r *Repository) OverdueRFIs(ctx context.Context, projectID uint, dayStart time.Time) (int64, error) {
	n, err := r.count(ctx, &model.RFI{},
		"project_id = ? AND status IN ? AND due_date < ?",
		projectID, model.RFIOpenStatuses, dayStart)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue rfis: %w", err)
	}
	return n, nil
}

// DefectStats counts defects reported and resolved in the window plus the
// live number of open critical defects
func (r *Repository) DefectStats(ctx context.Context, projectID uint, w digest.Window) (digest.DefectStats, error) {
	var stats digest.DefectStats
	var err error

	if stats.New, err = r.count(ctx, &model.Defect{},
		"project_id = ? AND "+inWindow("created_at"), projectID, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count new defects: %w", err)
	}
	if stats.Resolved, err = r.count(ctx, &model.Defect{},
		"project_id = ? AND status = ? AND "+inWindow("resolved_at"),
		projectID, model.DefectStatusResolved, w.Start, w.End); err != nil {
		return stats, fmt.Errorf("failed to count resolved defects: %w", err)
	}
	if stats.CriticalOpen, err = r.count(ctx, &model.Defect{},
		"project_id = ? AND severity = ? AND status IN ?",
		projectID, model.DefectSeverityCritical, model.DefectOpenStatuses); err != nil {
		return stats, fmt.Errorf("failed to count critical defects: %w", err)
	}
	return stats, nil
}

// PendingApprovals counts equipment and materials waiting for review
func (r *Repository) PendingApprovals(ctx context.Context, projectID uint) (int64, error) {
	var total int64
	for _, record := range []model.ActivityRecord{&model.Equipment{}, &model.Material{}} {
		n, err := r.count(ctx, record, "project_id = ? AND status = ?", projectID, model.ApprovalStatusPendingReview)
		if err != nil {
			return 0, fmt.Errorf("failed to count pending %s: %w", record.TableName(), err)
		}
		total += n
	}
	return total, nil
}

// UpcomingMeetings lists meetings in the week starting at from, earliest first
func (r *Repository) UpcomingMeetings(ctx context.Context, projectID uint, from time.Time) ([]digest.MeetingInfo, error) {
	var meetings []model.Meeting
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND "+inWindow("scheduled_at"), projectID, from, from.Add(digest.MeetingLookahead)).
		Order("scheduled_at ASC, id ASC").
		Limit(upcomingMeetingsLimit).
		Find(&meetings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list upcoming meetings: %w", result.Error)
	}

	infos := make([]digest.MeetingInfo, 0, len(meetings))
	for _, m := range meetings {
		infos = append(infos, digest.MeetingInfo{
			Title:       m.Title,
			Location:    m.Location,
			ScheduledAt: m.ScheduledAt.UTC(),
		})
	}
	return infos, nil
}

// OverallProgress averages current_progress over the project's construction
// areas. A project without areas reports 0.
func (r *Repository) OverallProgress(ctx context.Context, projectID uint) (float64, error) {
	var avg sql.NullFloat64
	row := r.db.WithContext(ctx).Model(&model.ConstructionArea{}).
		Select("AVG(current_progress)").
		Where("project_id = ?", projectID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average construction progress: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// DailySummaryProjects returns active projects that opted into the daily summary
func (r *Repository) DailySummaryProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	result := r.db.WithContext(ctx).
		Where("status = ? AND daily_summary_enabled = ?", model.ProjectStatusActive, true).
		Order("id").
		Find(&projects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get daily summary projects: %w", result.Error)
	}
	return projects, nil
}

// DigestIntervalProjects returns active projects with an interval digest configured.
// Whether a digest is due is decided by the caller.
func (r *Repository) DigestIntervalProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	result := r.db.WithContext(ctx).
		Where("status = ? AND notification_digest_interval_hours > ?", model.ProjectStatusActive, 0).
		Order("id").
		Find(&projects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get digest projects: %w", result.Error)
	}
	return projects, nil
}

// ActiveProjects returns every active project
func (r *Repository) ActiveProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	result := r.db.WithContext(ctx).
		Where("status = ?", model.ProjectStatusActive).
		Order("id").
		Find(&projects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get active projects: %w", result.Error)
	}
	return projects, nil
}

// GetProject looks up one project
func (r *Repository) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	result := r.db.WithContext(ctx).First(&project, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return &project, nil
}

// ProjectAdmins returns the active project-admin members of a project, by user id
func (r *Repository) ProjectAdmins(ctx context.Context, projectID uint) ([]model.User, error) {
	var users []model.User
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ? AND project_members.role = ? AND users.is_active = ?",
			projectID, model.MemberRoleProjectAdmin, true).
		Order("users.id").
		Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get project admins: %w", result.Error)
	}

	// A user can hold the role through more than one membership row
	admins := make([]model.User, 0, len(users))
	seen := make(map[uint]bool, len(users))
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		admins = append(admins, u)
	}
	return admins, nil
}

// TouchLastDigestSent records when the interval digest was last dispatched.
// It leaves updated_at alone.
func (r *Repository) TouchLastDigestSent(ctx context.Context, projectID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Project{ID: projectID}).
		UpdateColumn("last_digest_sent_at", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to update last digest time: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RFIsNeedingReminder returns unanswered RFIs of the project due before
// dueBefore, with their assignee loaded
func (r *Repository) RFIsNeedingReminder(ctx context.Context, projectID uint, dueBefore time.Time) ([]model.RFI, error) {
	var rfis []model.RFI
	result := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("project_id = ? AND status IN ? AND due_date IS NOT NULL AND due_date < ?",
			projectID, model.RFIOpenStatuses, dueBefore).
		Order("due_date ASC, id ASC").
		Find(&rfis)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get rfis due: %w", result.Error)
	}
	return rfis, nil
}

// StalePendingSubmissions returns equipment then materials of the project that
// have been pending review since before olderThan
func (r *Repository) StalePendingSubmissions(ctx context.Context, projectID uint, olderThan time.Time) ([]model.ActivityRecord, error) {
	const query = "project_id = ? AND status = ? AND updated_at < ?"

	var equipment []model.Equipment
	if err := r.db.WithContext(ctx).
		Where(query, projectID, model.ApprovalStatusPendingReview, olderThan).
		Order("created_at ASC, id ASC").
		Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to get stale equipment: %w", err)
	}

	var materials []model.Material
	if err := r.db.WithContext(ctx).
		Where(query, projectID, model.ApprovalStatusPendingReview, olderThan).
		Order("created_at ASC, id ASC").
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to get stale materials: %w", err)
	}

	records := make([]model.ActivityRecord, 0, len(equipment)+len(materials))
	for i := range equipment {
		records = append(records, &equipment[i])
	}
	for i := range materials {
		records = append(records, &materials[i])
	}
	return records, nil
}
