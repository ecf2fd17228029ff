package model

import "time"

// RFI is a request for information
type RFI struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID    uint       `json:"project_id" gorm:"not null;index"`
	Number       string     `json:"number" gorm:"type:varchar(32)"`
	Subject      string     `json:"subject" gorm:"type:varchar(255);not null"`
	Status       RFIStatus  `json:"status" gorm:"type:varchar(32);not null;index"`
	AssignedToID *uint      `json:"assigned_to_id" gorm:"index"`
	DueDate      *time.Time `json:"due_date" gorm:"index"`
	AnsweredAt   *time.Time `json:"answered_at"`
	ClosedAt     *time.Time `json:"closed_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Project    *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	AssignedTo *User    `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
}

// TableName specifies the table name for RFI
func (RFI) TableName() string {
	return "rfis"
}

// Overdue reports whether the RFI is unanswered past its due date at dayStart
func (r *RFI) Overdue(dayStart time.Time) bool {
	return r.Status.AwaitingResponse() && r.DueDate != nil && r.DueDate.Before(dayStart)
}
