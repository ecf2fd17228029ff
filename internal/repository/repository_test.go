package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"builderops-notify/internal/digest"
	"builderops-notify/internal/model"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *Repository) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return mock, New(db)
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

var testDay = digest.DayWindow(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))

func TestOverdueRFICollectorIsIdempotent(t *testing.T) {
	mock, repo := setupMockDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis. WHERE project_id = \? AND status IN \(\?,\?\) AND due_date < \?`).
			WillReturnRows(countRows(3))
	}

	first, err := repo.OverdueRFIs(ctx, 4, testDay.Start)
	require.NoError(t, err)
	second, err := repo.OverdueRFIs(ctx, 4, testDay.Start)
	require.NoError(t, err)

	assert.Equal(t, int64(3), first)
	assert.Equal(t, first, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalStatsQueriesRecordTable(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .materials. WHERE project_id = \? AND created_at >= \?`).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .materials. WHERE project_id = \? AND status = \? AND updated_at >= \?`).
		WithArgs(7, model.ApprovalStatusApproved, testDay.Start, testDay.End).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .materials. WHERE project_id = \? AND status = \? AND updated_at >= \?`).
		WithArgs(7, model.ApprovalStatusRejected, testDay.Start, testDay.End).
		WillReturnRows(countRows(0))

	stats, err := repo.ApprovalStats(context.Background(), &model.Material{}, 7, testDay)
	require.NoError(t, err)

	assert.Equal(t, digest.ApprovalStats{Created: 2, Approved: 2, Rejected: 0}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovalStatsWrapsErrors(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .equipment.`).
		WillReturnError(assert.AnError)

	_, err := repo.ApprovalStats(context.Background(), &model.Equipment{}, 7, testDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created equipment")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAuditEntries(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"entity_type", "action", "count"}).
		AddRow("rfi", "update", 5).
		AddRow("equipment", "create", 2)
	mock.ExpectQuery(`SELECT entity_type, action, COUNT\(\*\) AS count FROM .audit_logs. WHERE .* GROUP BY entity_type, action ORDER BY count DESC.* LIMIT 50`).
		WillReturnRows(rows)

	entries, err := repo.AuditEntries(context.Background(), 1, testDay)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, digest.AuditEntryCount{EntityType: "rfi", Action: "update", Count: 5}, entries[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditEntriesEmpty(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`FROM .audit_logs.`).
		WillReturnRows(sqlmock.NewRows([]string{"entity_type", "action", "count"}))

	entries, err := repo.AuditEntries(context.Background(), 1, testDay)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestOverallProgress(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT AVG\(current_progress\) FROM .construction_areas.`).
		WillReturnRows(sqlmock.NewRows([]string{"AVG(current_progress)"}).AddRow(45.678))
	mock.ExpectQuery(`SELECT AVG\(current_progress\) FROM .construction_areas.`).
		WillReturnRows(sqlmock.NewRows([]string{"AVG(current_progress)"}).AddRow(nil))

	progress, err := repo.OverallProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 45.678, progress, 1e-9)

	progress, err = repo.OverallProgress(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress, "no construction areas")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpcomingMeetings(t *testing.T) {
	mock, repo := setupMockDB(t)

	at := testDay.Start.Add(9 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "project_id", "title", "location", "scheduled_at"}).
		AddRow(3, 1, "Safety walk", "Gate B", at)
	mock.ExpectQuery(`SELECT \* FROM .meetings. WHERE .* ORDER BY scheduled_at ASC, id ASC LIMIT 10`).
		WithArgs(1, testDay.Start, testDay.Start.Add(digest.MeetingLookahead)).
		WillReturnRows(rows)

	meetings, err := repo.UpcomingMeetings(context.Background(), 1, testDay.Start)
	require.NoError(t, err)

	require.Len(t, meetings, 1)
	assert.Equal(t, "Safety walk", meetings[0].Title)
	assert.Equal(t, at, meetings[0].ScheduledAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDailySummaryProjects(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name", "status", "daily_summary_enabled"}).
		AddRow(1, "Harbor Tower", "active", true).
		AddRow(4, "Riverside Clinic", "active", true)
	mock.ExpectQuery(`SELECT \* FROM .projects. WHERE status = \? AND daily_summary_enabled = \? ORDER BY id`).
		WithArgs(model.ProjectStatusActive, true).
		WillReturnRows(rows)

	projects, err := repo.DailySummaryProjects(context.Background())
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Equal(t, "Harbor Tower", projects[0].Name)
	assert.Equal(t, uint(4), projects[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectAdminsDeduplicates(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "email", "language", "is_active"}).
		AddRow(2, "dana@example.com", "he", true).
		AddRow(2, "dana@example.com", "he", true).
		AddRow(5, "omar@example.com", "en", true)
	mock.ExpectQuery(`SELECT .* FROM .users. JOIN project_members ON project_members.user_id = users.id WHERE .* ORDER BY users.id`).
		WillReturnRows(rows)

	admins, err := repo.ProjectAdmins(context.Background(), 9)
	require.NoError(t, err)

	require.Len(t, admins, 2)
	assert.Equal(t, "dana@example.com", admins[0].Email)
	assert.Equal(t, "omar@example.com", admins[1].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectNotFound(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM .projects. WHERE .projects.\..id. = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	project, err := repo.GetProject(context.Background(), 42)
	assert.Nil(t, project)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTouchLastDigestSent(t *testing.T) {
	mock, repo := setupMockDB(t)
	at := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .projects. SET .last_digest_sent_at.=\? WHERE .*id. = \?`).
		WithArgs(at, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.TouchLastDigestSent(context.Background(), 3, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchLastDigestSentMissingProject(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE .projects.`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.TouchLastDigestSent(context.Background(), 3, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStalePendingSubmissions(t *testing.T) {
	mock, repo := setupMockDB(t)
	cutoff := testDay.Start.AddDate(0, 0, -3)

	mock.ExpectQuery(`SELECT \* FROM .equipment. WHERE project_id = \? AND status = \? AND updated_at < \?`).
		WithArgs(1, model.ApprovalStatusPendingReview, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "status"}).
			AddRow(10, 1, "Tower crane", "pending_review"))
	mock.ExpectQuery(`SELECT \* FROM .materials. WHERE project_id = \? AND status = \? AND updated_at < \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "status"}).
			AddRow(20, 1, "Rebar B500", "pending_review"))

	records, err := repo.StalePendingSubmissions(context.Background(), 1, cutoff)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "equipment", records[0].TableName())
	assert.Equal(t, "Tower crane", records[0].DisplayName())
	assert.Equal(t, "materials", records[1].TableName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRFIStatsGatesTransitionsOnStatusAndTimestamp(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis. WHERE project_id = \? AND status <> \? AND created_at >= \? AND created_at < \?$`).
		WithArgs(7, model.RFIStatusDraft, testDay.Start, testDay.End).
		WillReturnRows(countRows(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis. WHERE project_id = \? AND status = \? AND answered_at >= \? AND answered_at < \?$`).
		WithArgs(7, model.RFIStatusAnswered, testDay.Start, testDay.End).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis. WHERE project_id = \? AND status = \? AND closed_at >= \? AND closed_at < \?$`).
		WithArgs(7, model.RFIStatusClosed, testDay.Start, testDay.End).
		WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis. WHERE project_id = \? AND status IN \(\?,\?\) AND due_date < \?$`).
		WithArgs(7, model.RFIStatusOpen, model.RFIStatusWaitingResponse, testDay.Day()).
		WillReturnRows(countRows(3))

	stats, err := repo.RFIStats(context.Background(), 7, testDay)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Opened)
	assert.Equal(t, int64(2), stats.Answered)
	assert.Equal(t, int64(1), stats.Closed)
	assert.Equal(t, int64(3), stats.Overdue)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDefectStatsCriticalOpenIsNotWindowed(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .defects. WHERE project_id = \? AND created_at >= \? AND created_at < \?$`).
		WithArgs(7, testDay.Start, testDay.End).
		WillReturnRows(countRows(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .defects. WHERE project_id = \? AND status = \? AND resolved_at >= \? AND resolved_at < \?$`).
		WithArgs(7, model.DefectStatusResolved, testDay.Start, testDay.End).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .defects. WHERE project_id = \? AND severity = \? AND status IN \(\?,\?\)$`).
		WithArgs(7, model.DefectSeverityCritical, model.DefectStatusOpen, model.DefectStatusInProgress).
		WillReturnRows(countRows(1))

	stats, err := repo.DefectStats(context.Background(), 7, testDay)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.New)
	assert.Equal(t, int64(2), stats.Resolved)
	assert.Equal(t, int64(1), stats.CriticalOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectionStatsJoinsFindingsThroughInspections(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .inspections. WHERE project_id = \? AND status = \? AND completed_at >= \? AND completed_at < \?$`).
		WithArgs(7, model.InspectionStatusCompleted, testDay.Start, testDay.End).
		WillReturnRows(countRows(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .inspection_findings. JOIN inspections ON inspections.id = inspection_findings.inspection_id WHERE inspections.project_id = \? AND inspection_findings.created_at >= \? AND inspection_findings.created_at < \?$`).
		WithArgs(7, testDay.Start, testDay.End).
		WillReturnRows(countRows(6))

	stats, err := repo.InspectionStats(context.Background(), 7, testDay)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(6), stats.Findings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingApprovalsSumsEquipmentAndMaterials(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .equipment. WHERE project_id = \? AND status = \?$`).
		WithArgs(7, model.ApprovalStatusPendingReview).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM .materials. WHERE project_id = \? AND status = \?$`).
		WithArgs(7, model.ApprovalStatusPendingReview).
		WillReturnRows(countRows(3))

	pending, err := repo.PendingApprovals(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(5), pending)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDigestIntervalProjects(t *testing.T) {
	mock, repo := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "name", "status", "notification_digest_interval_hours"}).
		AddRow(2, "Harbor Tower", "active", 6).
		AddRow(8, "Depot Annex", "active", 24)
	mock.ExpectQuery(`SELECT \* FROM .projects. WHERE status = \? AND notification_digest_interval_hours > \? ORDER BY id$`).
		WithArgs(model.ProjectStatusActive, 0).
		WillReturnRows(rows)

	projects, err := repo.DigestIntervalProjects(context.Background())
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Equal(t, uint(2), projects[0].ID)
	assert.Equal(t, "Depot Annex", projects[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRFIsNeedingReminderSkipsUndatedRFIs(t *testing.T) {
	mock, repo := setupMockDB(t)
	dueBefore := testDay.Start.AddDate(0, 0, 3)
	due := testDay.Start.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"id", "project_id", "number", "subject", "status", "due_date", "assigned_to_id"}).
		AddRow(11, 7, "RFI-011", "Slab edge detail", "open", due, 4).
		AddRow(12, 7, "RFI-012", "Door hardware", "waiting_response", due, nil)
	mock.ExpectQuery(`SELECT \* FROM .rfis. WHERE project_id = \? AND status IN \(\?,\?\) AND due_date IS NOT NULL AND due_date < \? ORDER BY due_date ASC, id ASC$`).
		WithArgs(7, model.RFIStatusOpen, model.RFIStatusWaitingResponse, dueBefore).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM .users. WHERE .users.\..id. = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "language", "is_active"}).
			AddRow(4, "lee@example.com", "en", true))

	rfis, err := repo.RFIsNeedingReminder(context.Background(), 7, dueBefore)
	require.NoError(t, err)

	require.Len(t, rfis, 2)
	require.NotNil(t, rfis[0].AssignedTo)
	assert.Equal(t, "lee@example.com", rfis[0].AssignedTo.Email)
	assert.Nil(t, rfis[1].AssignedTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectorsReturnZeroOnEmptyTables(t *testing.T) {
	mock, repo := setupMockDB(t)

	for i := 0; i < 4; i++ {
		mock.ExpectQuery(`SELECT count\(\*\) FROM .rfis.`).WillReturnRows(countRows(0))
	}
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(`SELECT count\(\*\) FROM .defects.`).WillReturnRows(countRows(0))
	}

	rfiStats, err := repo.RFIStats(context.Background(), 7, testDay)
	require.NoError(t, err)
	assert.Equal(t, digest.RFIStats{}, rfiStats)

	defectStats, err := repo.DefectStats(context.Background(), 7, testDay)
	require.NoError(t, err)
	assert.Equal(t, digest.DefectStats{}, defectStats)
	require.NoError(t, mock.ExpectationsWereMet())
}
