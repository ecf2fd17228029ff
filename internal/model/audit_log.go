package model

import "time"

// AuditLog is an append-only record of a change made in the application
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID  *uint     `json:"project_id" gorm:"index"`
	UserID     *uint     `json:"user_id"`
	EntityType string    `json:"entity_type" gorm:"type:varchar(64);not null"`
	EntityID   *uint     `json:"entity_id"`
	Action     string    `json:"action" gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// All returns every model the service maps, in migration order
func All() []interface{} {
	return []interface{}{
		&Project{}, &User{}, &ProjectMember{},
		&Equipment{}, &Material{},
		&Inspection{}, &InspectionFinding{},
		&RFI{}, &Defect{}, &Meeting{}, &ConstructionArea{},
		&AuditLog{},
	}
}
