package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/cache"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/validator"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type taskServiceFixture struct {
	repo      *mockRepository
	publisher *events.MockPublisher
	service   TaskService
}

func newTaskServiceFixture() *taskServiceFixture {
	repo := newMockRepository()
	publisher := events.NewMockPublisher()
	logger := newTestLogger()
	awarder := NewPointsAwarder(repo, cache.NoopCache{}, publisher, logger)
	service := NewTaskService(repo, authz.NewChecker(nil), awarder, publisher, logger, validator.New())
	return &taskServiceFixture{repo: repo, publisher: publisher, service: service}
}

var (
	student = authz.Principal{ID: 10, Role: models.RoleStudent}
	teacher = authz.Principal{ID: 20, Role: models.RoleTeacher}
	admin   = authz.Principal{ID: 30, Role: models.RoleAdmin}
)

func openTask(id uint) *models.Task {
	return &models.Task{
		ID:        id,
		Title:     "Plant a sapling",
		Points:    40,
		IsActive:  true,
		CreatedBy: teacher.ID,
	}
}

func TestTaskService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission creates a pending record", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmission", ctx, uint(1), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.task.On("CreateSubmission", ctx, mock.AnythingOfType("*models.TaskSubmission")).Return(nil)

		sub, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "planted a neem sapling"}, nil, student)

		require.NoError(t, err)
		assert.Equal(t, models.SubmissionPending, sub.Status)
		assert.Equal(t, student.ID, sub.StudentID)
		assert.Empty(t, sub.Feedback)
		f.repo.task.AssertExpectations(t)

		require.Len(t, f.publisher.Events, 1)
		assert.Equal(t, events.EventSubmissionReceived, f.publisher.Events[0].Type)
	})

	t.Run("teacher cannot submit", func(t *testing.T) {
		f := newTaskServiceFixture()

		_, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "not a student"}, nil, teacher)

		require.Error(t, err)
		assert.True(t, IsForbidden(err))
	})

	t.Run("unassigned student is rejected", func(t *testing.T) {
		f := newTaskServiceFixture()
		task := openTask(1)
		task.AssignedTo = []models.TaskAssignment{{TaskID: 1, StudentID: 99}}
		f.repo.task.On("GetByID", ctx, uint(1)).Return(task, nil)

		_, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "let me in"}, nil, student)

		assert.ErrorIs(t, err, ErrTaskNotAssigned)
	})

	t.Run("pending submission cannot be resubmitted", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmission", ctx, uint(1), student.ID).Return(&models.TaskSubmission{
			ID: 5, TaskID: 1, StudentID: student.ID, Status: models.SubmissionPending,
		}, nil)

		_, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "again"}, nil, student)

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("approved submission cannot be resubmitted", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmission", ctx, uint(1), student.ID).Return(&models.TaskSubmission{
			ID: 5, TaskID: 1, StudentID: student.ID, Status: models.SubmissionApproved, PointsAwarded: 40,
		}, nil)

		_, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "double dip"}, nil, student)

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("rejected submission is overwritten and review fields reset", func(t *testing.T) {
		f := newTaskServiceFixture()
		reviewer := teacher.ID
		reviewedAt := time.Now().Add(-time.Hour)
		existing := &models.TaskSubmission{
			ID:            5,
			TaskID:        1,
			StudentID:     student.ID,
			Description:   "first try",
			Status:        models.SubmissionRejected,
			Feedback:      "photo missing",
			PointsAwarded: 0,
			ReviewedBy:    &reviewer,
			ReviewedAt:    &reviewedAt,
		}
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmission", ctx, uint(1), student.ID).Return(existing, nil)
		f.repo.task.On("UpdateSubmission", ctx, mock.AnythingOfType("*models.TaskSubmission")).Return(nil)

		sub, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "second try with photo"}, nil, student)

		require.NoError(t, err)
		assert.Equal(t, uint(5), sub.ID, "resubmission reuses the record")
		assert.Equal(t, models.SubmissionPending, sub.Status)
		assert.Equal(t, "second try with photo", sub.Description)
		assert.Empty(t, sub.Feedback)
		assert.Zero(t, sub.PointsAwarded)
	})

	t.Run("duplicate key race maps to conflict", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmission", ctx, uint(1), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.task.On("CreateSubmission", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := f.service.Submit(ctx, 1, &SubmitTaskRequest{Description: "raced"}, nil, student)

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.True(t, IsConflict(err))
	})
}

func TestTaskService_Review(t *testing.T) {
	ctx := context.Background()

	pendingSubmission := func() *models.TaskSubmission {
		return &models.TaskSubmission{
			ID:        5,
			TaskID:    1,
			StudentID: student.ID,
			Status:    models.SubmissionPending,
		}
	}

	t.Run("approval credits points and bumps tasks completed", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmissionByID", ctx, uint(1), uint(5)).Return(pendingSubmission(), nil)
		f.repo.task.On("UpdateSubmission", ctx, mock.Anything).Return(nil)
		f.repo.user.On("IncrementPoints", ctx, student.ID, 40, 1, 0).
			Return(&models.User{ID: student.ID, Points: 140, TasksCompleted: 4}, nil)

		sub, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID:  5,
			Status:        models.SubmissionApproved,
			Feedback:      "well done",
			PointsAwarded: 40,
		}, teacher)

		require.NoError(t, err)
		assert.Equal(t, models.SubmissionApproved, sub.Status)
		assert.Equal(t, 40, sub.PointsAwarded)
		require.NotNil(t, sub.ReviewedBy)
		assert.Equal(t, teacher.ID, *sub.ReviewedBy)
		f.repo.user.AssertExpectations(t)
	})

	t.Run("zero point approval still bumps tasks completed", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmissionByID", ctx, uint(1), uint(5)).Return(pendingSubmission(), nil)
		f.repo.task.On("UpdateSubmission", ctx, mock.Anything).Return(nil)
		f.repo.user.On("IncrementPoints", ctx, student.ID, 0, 1, 0).
			Return(&models.User{ID: student.ID, Points: 100, TasksCompleted: 4}, nil)

		_, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID: 5,
			Status:       models.SubmissionApproved,
		}, teacher)

		require.NoError(t, err)
		f.repo.user.AssertExpectations(t)
	})

	t.Run("rejection has no point side effects", func(t *testing.T) {
		f := newTaskServiceFixture()
		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmissionByID", ctx, uint(1), uint(5)).Return(pendingSubmission(), nil)
		f.repo.task.On("UpdateSubmission", ctx, mock.Anything).Return(nil)

		sub, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID: 5,
			Status:       models.SubmissionRejected,
			Feedback:     "needs a photo",
		}, teacher)

		require.NoError(t, err)
		assert.Equal(t, models.SubmissionRejected, sub.Status)
		f.repo.user.AssertNotCalled(t, "IncrementPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("re-review overwrites the earlier verdict", func(t *testing.T) {
		f := newTaskServiceFixture()
		reviewer := admin.ID
		reviewedAt := time.Now().Add(-time.Hour)
		already := pendingSubmission()
		already.Status = models.SubmissionRejected
		already.Feedback = "too blurry"
		already.ReviewedBy = &reviewer
		already.ReviewedAt = &reviewedAt

		f.repo.task.On("GetByID", ctx, uint(1)).Return(openTask(1), nil)
		f.repo.task.On("GetSubmissionByID", ctx, uint(1), uint(5)).Return(already, nil)
		f.repo.task.On("UpdateSubmission", ctx, mock.Anything).Return(nil)
		f.repo.user.On("IncrementPoints", ctx, student.ID, 40, 1, 0).
			Return(&models.User{ID: student.ID, Points: 140}, nil)

		sub, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID:  5,
			Status:        models.SubmissionApproved,
			PointsAwarded: 40,
		}, teacher)

		require.NoError(t, err)
		assert.Equal(t, models.SubmissionApproved, sub.Status)
		assert.Equal(t, teacher.ID, *sub.ReviewedBy)
	})

	t.Run("student cannot review", func(t *testing.T) {
		f := newTaskServiceFixture()

		_, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID: 5,
			Status:       models.SubmissionApproved,
		}, student)

		assert.True(t, IsForbidden(err))
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		f := newTaskServiceFixture()

		_, err := f.service.Review(ctx, 1, &ReviewSubmissionRequest{
			SubmissionID: 5,
			Status:       models.SubmissionPending,
		}, teacher)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("any teacher may delete regardless of creator", func(t *testing.T) {
		f := newTaskServiceFixture()
		task := openTask(1)
		task.CreatedBy = 999
		f.repo.task.On("GetByID", ctx, uint(1)).Return(task, nil)
		f.repo.task.On("Delete", ctx, uint(1)).Return(nil)

		err := f.service.Delete(ctx, 1, teacher)

		require.NoError(t, err)
		f.repo.task.AssertExpectations(t)
	})

	t.Run("student cannot delete", func(t *testing.T) {
		f := newTaskServiceFixture()

		err := f.service.Delete(ctx, 1, student)

		assert.True(t, IsForbidden(err))
	})
}

func TestTaskService_Update_OwnershipRule(t *testing.T) {
	ctx := context.Background()
	title := "Updated title"

	t.Run("non-creator teacher cannot update", func(t *testing.T) {
		f := newTaskServiceFixture()
		task := openTask(1)
		task.CreatedBy = 999
		f.repo.task.On("GetByID", ctx, uint(1)).Return(task, nil)

		_, err := f.service.Update(ctx, 1, &UpdateTaskRequest{Title: &title}, teacher)

		assert.True(t, IsForbidden(err))
	})

	t.Run("admin may update any task", func(t *testing.T) {
		f := newTaskServiceFixture()
		task := openTask(1)
		task.CreatedBy = 999
		f.repo.task.On("GetByID", ctx, uint(1)).Return(task, nil)
		f.repo.task.On("Update", ctx, mock.Anything).Return(nil)
		f.repo.task.On("GetByIDWithDetails", ctx, uint(1)).Return(task, nil)

		_, err := f.service.Update(ctx, 1, &UpdateTaskRequest{Title: &title}, admin)

		require.NoError(t, err)
	})
}
