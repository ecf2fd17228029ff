package model

import "time"

// ActivityRecord is a project-scoped submission whose approval lifecycle
// is tracked through status and timestamps. Equipment and materials share
// the columns project_id, status, created_at and updated_at, so queries
// over either table can be written once against TableName.
type ActivityRecord interface {
	TableName() string
	// GetUpdatedAt is when the record last changed status
	GetUpdatedAt() time.Time
	// DisplayName labels the record in reminder emails
	DisplayName() string
}

// Equipment is an equipment approval submission
type Equipment struct {
	ID           uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID    uint           `json:"project_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Manufacturer string         `json:"manufacturer" gorm:"type:varchar(255)"`
	Status       ApprovalStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"index"`
}

// TableName specifies the table name for Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// GetUpdatedAt returns the time of the last status change
func (e *Equipment) GetUpdatedAt() time.Time { return e.UpdatedAt }

// DisplayName returns the equipment name
func (e *Equipment) DisplayName() string { return e.Name }

// Material is a material approval submission
type Material struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID uint           `json:"project_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Supplier  string         `json:"supplier" gorm:"type:varchar(255)"`
	Status    ApprovalStatus `json:"status" gorm:"type:varchar(32);not null;index"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"index"`
}

// TableName specifies the table name for Material
func (Material) TableName() string {
	return "materials"
}

// GetUpdatedAt returns the time of the last status change
func (m *Material) GetUpdatedAt() time.Time { return m.UpdatedAt }

// DisplayName returns the material name
func (m *Material) DisplayName() string { return m.Name }
