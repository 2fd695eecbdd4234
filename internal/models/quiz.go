package models

import (
	"time"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string       `json:"description" gorm:"type:text"`
	Category    TaskCategory `json:"category" gorm:"not null;default:other;index" validate:"omitempty,task_category"`
	// Points is the maximum reward pool; an attempt earns a share
	// proportional to its score.
	Points    int  `json:"points" gorm:"not null" validate:"required,min=1"`
	TimeLimit int  `json:"timeLimit" gorm:"not null;default:15" validate:"min=1,max=180"`
	IsActive  bool `json:"isActive" gorm:"not null;default:true;index"`

	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Attempts  []QuizAttempt  `json:"attempts" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`

	CreatedBy uint      `json:"createdBy" gorm:"not null;index"`
	Creator   User      `json:"creator" gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type QuizQuestion struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	QuizID   uint   `json:"quizId" gorm:"not null;index"`
	Position int    `json:"position" gorm:"not null"`
	Text     string `json:"question" gorm:"type:text;not null" validate:"required"`
	// Options holds the answer choices as a JSON string array.
	Options       datatypes.JSON `json:"options" validate:"required"`
	CorrectAnswer int            `json:"correctAnswer" gorm:"not null" validate:"min=0"`
	Explanation   string         `json:"explanation" gorm:"type:text"`
}

// QuizAttempt records a student's single scored pass through a quiz. The
// composite unique index enforces one attempt per student per quiz at the
// storage layer.
type QuizAttempt struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	QuizID    uint  `json:"quizId" gorm:"not null;uniqueIndex:idx_quiz_student_attempt"`
	Quiz      *Quiz `json:"-" gorm:"foreignKey:QuizID"`
	StudentID uint  `json:"studentId" gorm:"not null;uniqueIndex:idx_quiz_student_attempt"`
	Student   User  `json:"student" gorm:"foreignKey:StudentID"`

	// Answers is a JSON int array aligned with question positions; -1 marks
	// an unanswered question.
	Answers        datatypes.JSON `json:"answers"`
	Score          int            `json:"score" gorm:"not null"`
	CorrectAnswers int            `json:"correctAnswers" gorm:"not null"`
	TotalQuestions int            `json:"totalQuestions" gorm:"not null"`
	PointsEarned   int            `json:"pointsEarned" gorm:"not null"`
	TimeTaken      int            `json:"timeTaken" gorm:"not null;default:0"`
	CompletedAt    time.Time      `json:"completedAt"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
