package events

import (
	"time"

	"github.com/nexora-edu/learning-service/internal/models"
)

// EventType represents the domain events the service emits
type EventType string

const (
	EventSubmissionReceived EventType = "submission.received"
	EventSubmissionReviewed EventType = "submission.reviewed"
	EventAttemptCompleted   EventType = "attempt.completed"
	EventPointsAwarded      EventType = "points.awarded"
	EventUserApproved       EventType = "user.approved"
)

// Event is the envelope shared by all published events
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
}

type SubmissionReceivedEvent struct {
	TaskID       uint   `json:"task_id"`
	TaskTitle    string `json:"task_title"`
	SubmissionID uint   `json:"submission_id"`
	StudentID    uint   `json:"student_id"`
	Resubmission bool   `json:"resubmission"`
}

type SubmissionReviewedEvent struct {
	TaskID        uint                    `json:"task_id"`
	TaskTitle     string                  `json:"task_title"`
	SubmissionID  uint                    `json:"submission_id"`
	StudentID     uint                    `json:"student_id"`
	ReviewerID    uint                    `json:"reviewer_id"`
	Status        models.SubmissionStatus `json:"status"`
	PointsAwarded int                     `json:"points_awarded"`
}

type AttemptCompletedEvent struct {
	QuizID       uint `json:"quiz_id"`
	AttemptID    uint `json:"attempt_id"`
	StudentID    uint `json:"student_id"`
	Score        int  `json:"score"`
	PointsEarned int  `json:"points_earned"`
}

type PointsAwardedEvent struct {
	UserID      uint   `json:"user_id"`
	Delta       int    `json:"delta"`
	TotalPoints int    `json:"total_points"`
	Reason      string `json:"reason"`
}

type UserApprovedEvent struct {
	UserID     uint `json:"user_id"`
	ApprovedBy uint `json:"approved_by"`
}
