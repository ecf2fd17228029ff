package model

import "time"

// Inspection is a site inspection
type Inspection struct {
	ID          uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID   uint             `json:"project_id" gorm:"not null;index"`
	Title       string           `json:"title" gorm:"type:varchar(255);not null"`
	Status      InspectionStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	ScheduledAt *time.Time       `json:"scheduled_at"`
	CompletedAt *time.Time       `json:"completed_at" gorm:"index"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Inspection
func (Inspection) TableName() string {
	return "inspections"
}

// InspectionFinding is an issue recorded during an inspection
type InspectionFinding struct {
	ID           uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	InspectionID uint           `json:"inspection_id" gorm:"not null;index"`
	Description  string         `json:"description" gorm:"type:text"`
	Severity     DefectSeverity `json:"severity" gorm:"type:varchar(16)"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`

	Inspection *Inspection `json:"inspection,omitempty" gorm:"foreignKey:InspectionID"`
}

// TableName specifies the table name for InspectionFinding
func (InspectionFinding) TableName() string {
	return "inspection_findings"
}
