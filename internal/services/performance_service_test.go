package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
)

type performanceServiceFixture struct {
	repo    *mockRepository
	service PerformanceService
}

func newPerformanceServiceFixture() *performanceServiceFixture {
	repo := newMockRepository()
	service := NewPerformanceService(repo, authz.NewChecker(nil), newTestLogger())
	return &performanceServiceFixture{repo: repo, service: service}
}

func stubStudentRecords(f *performanceServiceFixture, ctx context.Context, id uint) {
	f.repo.task.On("GetSubmissionsByStudent", ctx, id).Return([]*models.TaskSubmission{
		{
			TaskID:        1,
			StudentID:     id,
			Status:        models.SubmissionApproved,
			PointsAwarded: 40,
			SubmittedAt:   time.Now(),
			Task:          &models.Task{ID: 1, Title: "River Cleanup"},
		},
	}, nil)
	f.repo.quiz.On("GetAttemptsByStudent", ctx, id).Return([]*models.QuizAttempt{
		{QuizID: 2, StudentID: id, Score: 80, PointsEarned: 24, CompletedAt: time.Now(), Quiz: &models.Quiz{ID: 2, Title: "Recycling Basics"}},
		{QuizID: 3, StudentID: id, Score: 60, PointsEarned: 18, CompletedAt: time.Now()},
	}, nil)
}

func TestPerformanceService_Report(t *testing.T) {
	ctx := context.Background()

	t.Run("student sees only their own record", func(t *testing.T) {
		f := newPerformanceServiceFixture()
		f.repo.user.On("GetByID", ctx, student.ID).
			Return(&models.User{ID: student.ID, Name: "Asha", Points: 82, QuizzesTaken: 2}, nil)
		stubStudentRecords(f, ctx, student.ID)

		report, err := f.service.Report(ctx, student)

		require.NoError(t, err)
		require.Len(t, report, 1)
		assert.Equal(t, student.ID, report[0].StudentID)
		assert.Equal(t, "River Cleanup", report[0].Submissions[0].TaskTitle)
		assert.Equal(t, 70, report[0].AverageScore)
		f.repo.user.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("teacher sees every active student", func(t *testing.T) {
		f := newPerformanceServiceFixture()
		f.repo.user.On("List", ctx, mock.MatchedBy(func(filters repositories.UserFilters) bool {
			return filters.Role != nil && *filters.Role == models.RoleStudent
		})).Return([]*models.User{
			{ID: 10, Name: "Asha"},
			{ID: 11, Name: "Ben"},
		}, int64(2), nil)
		stubStudentRecords(f, ctx, 10)
		stubStudentRecords(f, ctx, 11)

		report, err := f.service.Report(ctx, teacher)

		require.NoError(t, err)
		assert.Len(t, report, 2)
	})
}

func TestPerformanceService_ExportXLSX(t *testing.T) {
	ctx := context.Background()

	t.Run("student cannot export", func(t *testing.T) {
		f := newPerformanceServiceFixture()

		_, err := f.service.ExportXLSX(ctx, student)

		assert.True(t, IsForbidden(err))
	})

	t.Run("export contains header and one row per student", func(t *testing.T) {
		f := newPerformanceServiceFixture()
		f.repo.user.On("List", ctx, mock.Anything).
			Return([]*models.User{{ID: 10, Name: "Asha", Email: "asha@school.test", Points: 82}}, int64(1), nil)
		stubStudentRecords(f, ctx, 10)

		data, err := f.service.ExportXLSX(ctx, teacher)

		require.NoError(t, err)
		require.NotEmpty(t, data)

		book, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer book.Close()

		rows, err := book.GetRows("Performance")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Student ID", rows[0][0])
		assert.Equal(t, "Asha", rows[1][1])
	})
}
