package model

import "time"

// Meeting is a scheduled project meeting
type Meeting struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID   uint      `json:"project_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Location    string    `json:"location" gorm:"type:varchar(255)"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// ConstructionArea is a tracked zone of the site with its completion percentage
type ConstructionArea struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID       uint      `json:"project_id" gorm:"not null;index"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	CurrentProgress float64   `json:"current_progress" gorm:"default:0"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for ConstructionArea
func (ConstructionArea) TableName() string {
	return "construction_areas"
}
