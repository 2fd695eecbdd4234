package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Badge is stored inside the user's badges JSON column.
type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Name     string   `json:"name" gorm:"not null;size:50" validate:"required,min=2,max=50"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Password string   `json:"-" gorm:"not null;size:100"`
	Role     UserRole `json:"role" gorm:"not null;default:student;index" validate:"omitempty,user_role"`

	// Gamification counters. Points and TasksCompleted only ever change
	// through atomic column increments (see UserRepository) or the explicit
	// admin points override.
	Points         int            `json:"points" gorm:"not null;default:0"`
	TasksCompleted int            `json:"tasksCompleted" gorm:"not null;default:0"`
	QuizzesTaken   int            `json:"quizzesTaken" gorm:"not null;default:0"`
	Streak         int            `json:"streak" gorm:"not null;default:0"`
	LastStreakDate *time.Time     `json:"lastStreakDate"`
	Badges         datatypes.JSON `json:"badges"`

	// Accounts are never hard-deleted; deactivation hides them everywhere.
	IsActive   bool `json:"isActive" gorm:"not null;default:true;index"`
	IsApproved bool `json:"isApproved" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
