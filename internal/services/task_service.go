package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"
	"gorm.io/datatypes"
)

// ===== REQUEST STRUCTURES =====

type CreateTaskRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=200"`
	Description string                 `json:"description" validate:"required"`
	Category    models.TaskCategory    `json:"category" validate:"omitempty,task_category"`
	Difficulty  models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Points      int                    `json:"points" validate:"required,min=1"`
	DueDate     time.Time              `json:"dueDate" validate:"required"`
	AssignedTo  []uint                 `json:"assignedTo"`
}

type UpdateTaskRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                 `json:"description"`
	Category    *models.TaskCategory    `json:"category" validate:"omitempty,task_category"`
	Difficulty  *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Points      *int                    `json:"points" validate:"omitempty,min=1"`
	DueDate     *time.Time              `json:"dueDate"`
	AssignedTo  []uint                  `json:"assignedTo"`
}

type SubmitTaskRequest struct {
	Description string `json:"description" validate:"required,min=3,max=500"`
}

type ReviewSubmissionRequest struct {
	SubmissionID  uint                    `json:"submissionId" validate:"required"`
	Status        models.SubmissionStatus `json:"status" validate:"required,submission_status"`
	Feedback      string                  `json:"feedback" validate:"omitempty,max=300"`
	PointsAwarded int                     `json:"pointsAwarded" validate:"omitempty,min=0"`
}

type TaskListFilters struct {
	Category   *models.TaskCategory
	Difficulty *models.DifficultyLevel
	// Status filters a student's tasks by their own submission status.
	Status *models.SubmissionStatus
}

// ===== SERVICE =====

type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest, resource *models.FileRef, p authz.Principal) (*models.Task, error)
	List(ctx context.Context, filters TaskListFilters, p authz.Principal) ([]*models.Task, int64, error)
	MyTasks(ctx context.Context, p authz.Principal) ([]*models.Task, error)
	GetByID(ctx context.Context, id uint, p authz.Principal) (*models.Task, error)
	Update(ctx context.Context, id uint, req *UpdateTaskRequest, p authz.Principal) (*models.Task, error)
	Delete(ctx context.Context, id uint, p authz.Principal) error

	Submit(ctx context.Context, taskID uint, req *SubmitTaskRequest, file *models.FileRef, p authz.Principal) (*models.TaskSubmission, error)
	Review(ctx context.Context, taskID uint, req *ReviewSubmissionRequest, p authz.Principal) (*models.TaskSubmission, error)
}

type taskService struct {
	repo      repositories.Repository
	checker   *authz.Checker
	awarder   *PointsAwarder
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTaskService(
	repo repositories.Repository,
	checker *authz.Checker,
	awarder *PointsAwarder,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
) TaskService {
	return &taskService{
		repo:      repo,
		checker:   checker,
		awarder:   awarder,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== CONTENT CRUD =====

func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest, resource *models.FileRef, p authz.Principal) (*models.Task, error) {
	if !s.checker.Can(p, authz.ActionTaskCreate, authz.Resource{Kind: "task"}) {
		return nil, NewPermissionError(p.ID, 0, "task", "create", "role not permitted")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if len(req.AssignedTo) > 0 {
		ok, err := s.repo.User().ActiveStudentsExist(ctx, req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("failed to validate assignees: %w", err)
		}
		if !ok {
			return nil, ErrInvalidAssignees
		}
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Category:    defaultCategory(req.Category),
		Difficulty:  defaultDifficulty(req.Difficulty),
		Points:      req.Points,
		DueDate:     req.DueDate,
		IsActive:    true,
		CreatedBy:   p.ID,
	}
	for _, id := range req.AssignedTo {
		task.AssignedTo = append(task.AssignedTo, models.TaskAssignment{StudentID: id})
	}
	if resource != nil {
		task.ResourceFile = mustJSON(resource)
	}

	if err := s.repo.Task().Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task created", "task_id", task.ID, "created_by", p.ID)
	return s.repo.Task().GetByIDWithDetails(ctx, task.ID)
}

func (s *taskService) List(ctx context.Context, filters TaskListFilters, p authz.Principal) ([]*models.Task, int64, error) {
	repoFilters := repositories.TaskFilters{
		Category:   filters.Category,
		Difficulty: filters.Difficulty,
	}
	// Students filtering by status see only tasks carrying their own
	// submission in that state.
	if filters.Status != nil && p.Role == models.RoleStudent {
		repoFilters.SubmissionStudentID = &p.ID
		repoFilters.SubmissionStatus = filters.Status
	}
	return s.repo.Task().List(ctx, repoFilters)
}

func (s *taskService) MyTasks(ctx context.Context, p authz.Principal) ([]*models.Task, error) {
	filters := repositories.TaskFilters{}
	switch p.Role {
	case models.RoleStudent:
		filters.AssignedTo = &p.ID
	case models.RoleTeacher:
		filters.CreatedBy = &p.ID
	}
	tasks, _, err := s.repo.Task().List(ctx, filters)
	return tasks, err
}

func (s *taskService) GetByID(ctx context.Context, id uint, p authz.Principal) (*models.Task, error) {
	task, err := s.repo.Task().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, id uint, req *UpdateTaskRequest, p authz.Principal) (*models.Task, error) {
	task, err := s.repo.Task().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	// Update is creator-or-admin; deletion below is deliberately looser.
	if !s.checker.Can(p, authz.ActionTaskUpdate, authz.Resource{Kind: "task", ID: id, OwnerID: task.CreatedBy}) {
		return nil, NewPermissionError(p.ID, id, "task", "update", "not the creator")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Difficulty != nil {
		task.Difficulty = *req.Difficulty
	}
	if req.Points != nil {
		task.Points = *req.Points
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}

	if err := s.repo.Task().Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if req.AssignedTo != nil {
		ok, err := s.repo.User().ActiveStudentsExist(ctx, req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("failed to validate assignees: %w", err)
		}
		if !ok {
			return nil, ErrInvalidAssignees
		}
		if err := s.repo.Task().ReplaceAssignments(ctx, id, req.AssignedTo); err != nil {
			return nil, fmt.Errorf("failed to update assignments: %w", err)
		}
	}

	return s.repo.Task().GetByIDWithDetails(ctx, id)
}

// Delete is open to any teacher or admin regardless of creator. That matches
// the deployed behavior for cleaning up orphaned tasks and is intentionally
// asymmetric with Update.
func (s *taskService) Delete(ctx context.Context, id uint, p authz.Principal) error {
	if !s.checker.Can(p, authz.ActionTaskDelete, authz.Resource{Kind: "task", ID: id}) {
		return NewPermissionError(p.ID, id, "task", "delete", "role not permitted")
	}

	if _, err := s.repo.Task().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}

	return s.repo.Task().Delete(ctx, id)
}

// ===== SUBMISSION WORKFLOW =====

func (s *taskService) Submit(ctx context.Context, taskID uint, req *SubmitTaskRequest, file *models.FileRef, p authz.Principal) (*models.TaskSubmission, error) {
	if !s.checker.Can(p, authz.ActionTaskSubmit, authz.Resource{Kind: "task", ID: taskID}) {
		return nil, NewPermissionError(p.ID, taskID, "task", "submit", "only students submit tasks")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.repo.Task().GetByID(ctx, taskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if !task.IsAssignedTo(p.ID) {
		return nil, ErrTaskNotAssigned
	}

	now := time.Now()
	existing, err := s.repo.Task().GetSubmission(ctx, taskID, p.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up submission: %w", err)
	}

	var sub *models.TaskSubmission
	resubmission := false

	switch {
	case existing == nil || repositories.IsNotFoundError(err):
		sub = &models.TaskSubmission{
			TaskID:      taskID,
			StudentID:   p.ID,
			Description: req.Description,
			Status:      models.SubmissionPending,
			SubmittedAt: now,
		}
		if file != nil {
			sub.File = mustJSON(file)
		}
		if err := s.repo.Task().CreateSubmission(ctx, sub); err != nil {
			// The unique index backstops a concurrent duplicate submit.
			if repositories.IsDuplicateError(err) {
				return nil, ErrAlreadySubmitted
			}
			return nil, err
		}

	case existing.Status == models.SubmissionRejected:
		// The single permitted resubmission path: overwrite in place and
		// reset the review fields.
		existing.Description = req.Description
		existing.Status = models.SubmissionPending
		existing.Feedback = ""
		existing.PointsAwarded = 0
		existing.SubmittedAt = now
		if file != nil {
			existing.File = mustJSON(file)
		}
		if err := s.repo.Task().UpdateSubmission(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}
		sub = existing
		resubmission = true

	default:
		// pending or approved: immutable to further submits
		return nil, ErrAlreadySubmitted
	}

	if err := s.publisher.Publish(ctx, events.EventSubmissionReceived, events.SubmissionReceivedEvent{
		TaskID:       taskID,
		TaskTitle:    task.Title,
		SubmissionID: sub.ID,
		StudentID:    p.ID,
		Resubmission: resubmission,
	}); err != nil {
		s.logger.Error("Failed to publish submission.received event", "task_id", taskID, "error", err)
	}

	s.logger.Info("Task submitted",
		"task_id", taskID,
		"submission_id", sub.ID,
		"student_id", p.ID,
		"resubmission", resubmission)

	return sub, nil
}

func (s *taskService) Review(ctx context.Context, taskID uint, req *ReviewSubmissionRequest, p authz.Principal) (*models.TaskSubmission, error) {
	if !s.checker.Can(p, authz.ActionTaskReview, authz.Resource{Kind: "task", ID: taskID}) {
		return nil, NewPermissionError(p.ID, taskID, "task", "review", "role not permitted")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.repo.Task().GetByID(ctx, taskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	sub, err := s.repo.Task().GetSubmissionByID(ctx, taskID, req.SubmissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	// Reviews always overwrite prior review data; a submission may be
	// re-reviewed and the latest verdict wins.
	now := time.Now()
	sub.Status = req.Status
	sub.Feedback = req.Feedback
	sub.PointsAwarded = req.PointsAwarded
	sub.ReviewedBy = &p.ID
	sub.ReviewedAt = &now

	if err := s.repo.Task().UpdateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	// Approval credits the student; rejection has no side effects. A failed
	// credit surfaces as an error so the caller never sees a review reported
	// complete without its increment.
	if req.Status == models.SubmissionApproved {
		if _, err := s.awarder.Award(ctx, sub.StudentID, req.PointsAwarded, 1, 0, "task approval"); err != nil {
			return nil, err
		}
	}

	if err := s.publisher.Publish(ctx, events.EventSubmissionReviewed, events.SubmissionReviewedEvent{
		TaskID:        taskID,
		TaskTitle:     task.Title,
		SubmissionID:  sub.ID,
		StudentID:     sub.StudentID,
		ReviewerID:    p.ID,
		Status:        req.Status,
		PointsAwarded: req.PointsAwarded,
	}); err != nil {
		s.logger.Error("Failed to publish submission.reviewed event", "task_id", taskID, "error", err)
	}

	s.logger.Info("Submission reviewed",
		"task_id", taskID,
		"submission_id", sub.ID,
		"status", req.Status,
		"points_awarded", req.PointsAwarded,
		"reviewer_id", p.ID)

	return sub, nil
}

// ===== HELPERS =====

func defaultCategory(c models.TaskCategory) models.TaskCategory {
	if c == "" {
		return models.CategoryOther
	}
	return c
}

func defaultDifficulty(d models.DifficultyLevel) models.DifficultyLevel {
	if d == "" {
		return models.DifficultyEasy
	}
	return d
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
