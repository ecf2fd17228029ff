package model

import "time"

// User is an application account
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName  string    `json:"full_name" gorm:"type:varchar(255)"`
	Language  string    `json:"language" gorm:"type:varchar(8);default:en"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// ProjectMember links a user to a project with a role
type ProjectMember struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID uint       `json:"project_id" gorm:"not null;index"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Role      MemberRole `json:"role" gorm:"type:varchar(32);not null"`
	CreatedAt time.Time  `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for ProjectMember
func (ProjectMember) TableName() string {
	return "project_members"
}
