package digest

import (
	"context"
	"fmt"
	"time"

	"builderops-notify/internal/model"
)

// MeetingLookahead is how far ahead upcoming meetings are listed
const MeetingLookahead = 7 * 24 * time.Hour

// StatsSource provides the per-entity collectors. Every collector returns
// zero values for empty result sets.
type StatsSource interface {
	AuditEntries(ctx context.Context, projectID uint, w Window) ([]AuditEntryCount, error)
	ApprovalStats(ctx context.Context, record model.ActivityRecord, projectID uint, w Window) (ApprovalStats, error)
	InspectionStats(ctx context.Context, projectID uint, w Window) (InspectionStats, error)
	RFIStats(ctx context.Context, projectID uint, w Window) (RFIStats, error)
	DefectStats(ctx context.Context, projectID uint, w Window) (DefectStats, error)
	PendingApprovals(ctx context.Context, projectID uint) (int64, error)
	UpcomingMeetings(ctx context.Context, projectID uint, from time.Time) ([]MeetingInfo, error)
	OverallProgress(ctx context.Context, projectID uint) (float64, error)
}

// Assembler builds summaries from a StatsSource
type Assembler struct {
	stats StatsSource
}

// NewAssembler creates a new assembler
func NewAssembler(stats StatsSource) *Assembler {
	return &Assembler{stats: stats}
}

// Build collects every statistic for the project over w
func (a *Assembler) Build(ctx context.Context, projectID uint, w Window) (*DailySummary, error) {
	day := w.Day()
	s := &DailySummary{
		ProjectID:   projectID,
		SummaryDate: day,
		Window:      w,
	}

	var err error
	if s.AuditEntries, err = a.stats.AuditEntries(ctx, projectID, w); err != nil {
		return nil, fmt.Errorf("audit entries: %w", err)
	}
	if s.Equipment, err = a.stats.ApprovalStats(ctx, &model.Equipment{}, projectID, w); err != nil {
		return nil, fmt.Errorf("equipment stats: %w", err)
	}
	if s.Materials, err = a.stats.ApprovalStats(ctx, &model.Material{}, projectID, w); err != nil {
		return nil, fmt.Errorf("material stats: %w", err)
	}
	if s.Inspections, err = a.stats.InspectionStats(ctx, projectID, w); err != nil {
		return nil, fmt.Errorf("inspection stats: %w", err)
	}
	if s.RFIs, err = a.stats.RFIStats(ctx, projectID, w); err != nil {
		return nil, fmt.Errorf("rfi stats: %w", err)
	}
	if s.Defects, err = a.stats.DefectStats(ctx, projectID, w); err != nil {
		return nil, fmt.Errorf("defect stats: %w", err)
	}
	if s.PendingApprovals, err = a.stats.PendingApprovals(ctx, projectID); err != nil {
		return nil, fmt.Errorf("pending approvals: %w", err)
	}

	if s.UpcomingMeetings, err = a.stats.UpcomingMeetings(ctx, projectID, day); err != nil {
		return nil, fmt.Errorf("upcoming meetings: %w", err)
	}
	if s.OverallProgress, err = a.stats.OverallProgress(ctx, projectID); err != nil {
		return nil, fmt.Errorf("overall progress: %w", err)
	}

	s.HasActivity = DetectActivity(s)
	return s, nil
}
