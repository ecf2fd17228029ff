package model

import "time"

// Defect is a construction defect
type Defect struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID  uint           `json:"project_id" gorm:"not null;index"`
	Title      string         `json:"title" gorm:"type:varchar(255);not null"`
	Severity   DefectSeverity `json:"severity" gorm:"type:varchar(16);not null"`
	Status     DefectStatus   `json:"status" gorm:"type:varchar(32);not null;index"`
	ResolvedAt *time.Time     `json:"resolved_at"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Defect
func (Defect) TableName() string {
	return "defects"
}
