package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskCategory string

const (
	CategoryRecycling    TaskCategory = "recycling"
	CategoryEnergy       TaskCategory = "energy"
	CategoryWater        TaskCategory = "water"
	CategoryBiodiversity TaskCategory = "biodiversity"
	CategoryClimate      TaskCategory = "climate"
	CategoryWaste        TaskCategory = "waste"
	CategoryTransport    TaskCategory = "transport"
	CategoryOther        TaskCategory = "other"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// FileRef describes a stored upload; persisted as JSON alongside its owner.
type FileRef struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Path         string `json:"path"`
	MimeType     string `json:"mime_type"`
}

type Task struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string          `json:"description" gorm:"type:text;not null" validate:"required"`
	Category    TaskCategory    `json:"category" gorm:"not null;default:other;index" validate:"omitempty,task_category"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"not null;default:easy" validate:"omitempty,difficulty_level"`
	Points      int             `json:"points" gorm:"not null" validate:"required,min=1"`
	DueDate     time.Time       `json:"dueDate" validate:"required"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true;index"`

	// Empty assignment list means the task is open to every student.
	AssignedTo   []TaskAssignment `json:"assignedTo" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	ResourceFile datatypes.JSON   `json:"resourceFile"`
	Submissions  []TaskSubmission `json:"submissions" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`

	CreatedBy uint      `json:"createdBy" gorm:"not null;index"`
	Creator   User      `json:"creator" gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TaskAssignment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	TaskID    uint `json:"taskId" gorm:"not null;uniqueIndex:idx_task_student_assignment"`
	StudentID uint `json:"studentId" gorm:"not null;uniqueIndex:idx_task_student_assignment"`
	Student   User `json:"student" gorm:"foreignKey:StudentID"`
}

// TaskSubmission is the sub-record a student files against a task. The
// composite unique index backstops the one-submission-per-student invariant
// under concurrent submits; all review mutations target this row only, never
// the whole task.
type TaskSubmission struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	TaskID      uint             `json:"taskId" gorm:"not null;uniqueIndex:idx_task_student_submission"`
	Task        *Task            `json:"-" gorm:"foreignKey:TaskID"`
	StudentID   uint             `json:"studentId" gorm:"not null;uniqueIndex:idx_task_student_submission"`
	Student     User             `json:"student" gorm:"foreignKey:StudentID"`
	Description string           `json:"description" gorm:"type:text;not null" validate:"required,min=3,max=500"`
	File        datatypes.JSON   `json:"file"`
	Status      SubmissionStatus `json:"status" gorm:"not null;default:pending;index"`

	Feedback      string     `json:"feedback" gorm:"size:300"`
	PointsAwarded int        `json:"pointsAwarded" gorm:"not null;default:0"`
	ReviewedBy    *uint      `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	SubmittedAt   time.Time  `json:"submittedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}

// AssignedToIDs flattens the assignment rows for API responses.
func (t *Task) AssignedToIDs() []uint {
	ids := make([]uint, 0, len(t.AssignedTo))
	for _, a := range t.AssignedTo {
		ids = append(ids, a.StudentID)
	}
	return ids
}

// IsAssignedTo reports whether the student may submit to this task. An empty
// assignment list opens the task to all students.
func (t *Task) IsAssignedTo(studentID uint) bool {
	if len(t.AssignedTo) == 0 {
		return true
	}
	for _, a := range t.AssignedTo {
		if a.StudentID == studentID {
			return true
		}
	}
	return false
}

func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryRecycling, CategoryEnergy, CategoryWater, CategoryBiodiversity,
		CategoryClimate, CategoryWaste, CategoryTransport, CategoryOther:
		return true
	}
	return false
}

func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
