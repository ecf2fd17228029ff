package model

import (
	"time"
)

// Project is the tenant-scoped unit of work
type Project struct {
	ID                              uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                            string        `json:"name" gorm:"type:varchar(255);not null"`
	Status                          ProjectStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	DailySummaryEnabled             bool          `json:"daily_summary_enabled" gorm:"default:false"`
	NotificationDigestIntervalHours int           `json:"notification_digest_interval_hours" gorm:"default:0"`
	LastDigestSentAt                *time.Time    `json:"last_digest_sent_at"`
	CreatedAt                       time.Time     `json:"created_at"`
	UpdatedAt                       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// DigestDue reports whether the interval digest should run at now.
// A project that never received a digest is always due.
func (p *Project) DigestDue(now time.Time) bool {
	if p.NotificationDigestIntervalHours <= 0 {
		return false
	}
	if p.LastDigestSentAt == nil {
		return true
	}
	interval := time.Duration(p.NotificationDigestIntervalHours) * time.Hour
	return now.Sub(*p.LastDigestSentAt) >= interval
}

// DigestWindowStart returns the start of the activity window for the interval digest
func (p *Project) DigestWindowStart(now time.Time) time.Time {
	if p.LastDigestSentAt != nil {
		return p.LastDigestSentAt.UTC()
	}
	return now.Add(-time.Duration(p.NotificationDigestIntervalHours) * time.Hour)
}
