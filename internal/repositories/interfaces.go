package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/nexora-edu/learning-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	IsActive  *bool            `json:"is_active"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "points", "name"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type TaskFilters struct {
	Category   *models.TaskCategory    `json:"category"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	CreatedBy  *uint                   `json:"created_by"`
	// AssignedTo limits results to tasks a student may work on: ones that
	// name the student plus open tasks with no assignment rows.
	AssignedTo *uint `json:"assigned_to"`
	// SubmissionStudentID/SubmissionStatus filter tasks by the state of a
	// particular student's submission.
	SubmissionStudentID *uint                    `json:"submission_student_id"`
	SubmissionStatus    *models.SubmissionStatus `json:"submission_status"`
	Limit               int                      `json:"limit"`
	Offset              int                      `json:"offset"`
}

type QuizFilters struct {
	Category  *models.TaskCategory `json:"category"`
	CreatedBy *uint                `json:"created_by"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error

	UpdateRole(ctx context.Context, id uint, role models.UserRole) error
	SetActive(ctx context.Context, id uint, active bool) error
	Approve(ctx context.Context, id uint) error
	UpdateStreak(ctx context.Context, id uint, streak int, date time.Time) error

	// IncrementPoints applies an atomic column increment; tasksCompleted and
	// quizzesTaken deltas ride along in the same statement so concurrent
	// credits never lose an update.
	IncrementPoints(ctx context.Context, id uint, points, tasksCompleted, quizzesTaken int) (*models.User, error)
	// SetPoints overwrites the raw accumulator (admin override, not a credit).
	SetPoints(ctx context.Context, id uint, points int) (*models.User, error)

	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.User, error)
	StreakLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
	// ActiveStudentsExist reports whether every id names an active student.
	ActiveStudentsExist(ctx context.Context, ids []uint) (bool, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters TaskFilters) ([]*models.Task, int64, error)
	ReplaceAssignments(ctx context.Context, taskID uint, studentIDs []uint) error

	GetSubmission(ctx context.Context, taskID, studentID uint) (*models.TaskSubmission, error)
	GetSubmissionByID(ctx context.Context, taskID, submissionID uint) (*models.TaskSubmission, error)
	CreateSubmission(ctx context.Context, sub *models.TaskSubmission) error
	// UpdateSubmission writes only the given submission row; concurrent
	// reviews of different submissions on the same task never collide.
	UpdateSubmission(ctx context.Context, sub *models.TaskSubmission) error
	GetSubmissionsByStudent(ctx context.Context, studentID uint) ([]*models.TaskSubmission, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)

	GetAttempt(ctx context.Context, quizID, studentID uint) (*models.QuizAttempt, error)
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	GetAttemptsByStudent(ctx context.Context, studentID uint) ([]*models.QuizAttempt, error)
}

type ModuleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	GetByID(ctx context.Context, id uint) (*models.Module, error)
	List(ctx context.Context) ([]*models.Module, error)
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id uint) error
}

// Repository aggregates all stores behind a single dependency.
type Repository interface {
	User() UserRepository
	Task() TaskRepository
	Quiz() QuizRepository
	Module() ModuleRepository
}

// ===== ERROR HELPERS =====

var ErrDuplicateKey = errors.New("duplicate key violation")

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey)
}
