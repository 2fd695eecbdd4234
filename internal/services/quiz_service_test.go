package services

import (
	"context"
	"testing"

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

type quizServiceFixture struct {
	repo      *mockRepository
	publisher *events.MockPublisher
	service   QuizService
}

func newQuizServiceFixture() *quizServiceFixture {
	repo := newMockRepository()
	publisher := events.NewMockPublisher()
	logger := newTestLogger()
	awarder := NewPointsAwarder(repo, cache.NoopCache{}, publisher, logger)
	service := NewQuizService(repo, authz.NewChecker(nil), awarder, publisher, logger, validator.New())
	return &quizServiceFixture{repo: repo, publisher: publisher, service: service}
}

func threeQuestionQuiz(points int) *models.Quiz {
	return &models.Quiz{
		ID:     7,
		Title:  "Recycling basics",
		Points: points,
		Questions: []models.QuizQuestion{
			{ID: 1, QuizID: 7, Position: 0, CorrectAnswer: 0},
			{ID: 2, QuizID: 7, Position: 1, CorrectAnswer: 2},
			{ID: 3, QuizID: 7, Position: 2, CorrectAnswer: 1},
		},
	}
}

func TestQuizService_Attempt(t *testing.T) {
	ctx := context.Background()

	t.Run("perfect score earns full points", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(30), nil)
		f.repo.quiz.On("GetAttempt", ctx, uint(7), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.quiz.On("CreateAttempt", ctx, mock.AnythingOfType("*models.QuizAttempt")).Return(nil)
		f.repo.user.On("IncrementPoints", ctx, student.ID, 30, 0, 1).
			Return(&models.User{ID: student.ID, Points: 130, QuizzesTaken: 3}, nil)

		attempt, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0, 2, 1}}, student)

		require.NoError(t, err)
		assert.Equal(t, 100, attempt.Score)
		assert.Equal(t, 3, attempt.CorrectAnswers)
		assert.Equal(t, 30, attempt.PointsEarned)
		f.repo.user.AssertExpectations(t)
	})

	t.Run("partial score rounds and earns a proportional share", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(50), nil)
		f.repo.quiz.On("GetAttempt", ctx, uint(7), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.quiz.On("CreateAttempt", ctx, mock.Anything).Return(nil)
		// 2/3 correct: score = round(200/3) = 67, points = round(50*67/100) = 34
		f.repo.user.On("IncrementPoints", ctx, student.ID, 34, 0, 1).
			Return(&models.User{ID: student.ID}, nil)

		attempt, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0, 2, 0}}, student)

		require.NoError(t, err)
		assert.Equal(t, 67, attempt.Score)
		assert.Equal(t, 2, attempt.CorrectAnswers)
		assert.Equal(t, 34, attempt.PointsEarned)
	})

	t.Run("zero score still counts the attempt", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(30), nil)
		f.repo.quiz.On("GetAttempt", ctx, uint(7), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.quiz.On("CreateAttempt", ctx, mock.Anything).Return(nil)
		f.repo.user.On("IncrementPoints", ctx, student.ID, 0, 0, 1).
			Return(&models.User{ID: student.ID, QuizzesTaken: 1}, nil)

		attempt, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{-1, -1, -1}}, student)

		require.NoError(t, err)
		assert.Zero(t, attempt.Score)
		assert.Zero(t, attempt.PointsEarned)
		f.repo.user.AssertExpectations(t)
	})

	t.Run("second attempt conflicts", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(30), nil)
		f.repo.quiz.On("GetAttempt", ctx, uint(7), student.ID).Return(&models.QuizAttempt{
			ID: 1, QuizID: 7, StudentID: student.ID, Score: 67,
		}, nil)

		_, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0, 2, 1}}, student)

		assert.ErrorIs(t, err, ErrAlreadyAttempted)
		assert.True(t, IsConflict(err))
	})

	t.Run("duplicate key race maps to conflict", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(30), nil)
		f.repo.quiz.On("GetAttempt", ctx, uint(7), student.ID).Return(nil, gorm.ErrRecordNotFound)
		f.repo.quiz.On("CreateAttempt", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0, 2, 1}}, student)

		assert.ErrorIs(t, err, ErrAlreadyAttempted)
	})

	t.Run("answer count mismatch fails validation", func(t *testing.T) {
		f := newQuizServiceFixture()
		f.repo.quiz.On("GetByID", ctx, uint(7)).Return(threeQuestionQuiz(30), nil)

		_, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0}}, student)

		assert.ErrorIs(t, err, ErrAnswerCountInvalid)
		assert.True(t, IsValidation(err))
	})

	t.Run("teacher cannot attempt", func(t *testing.T) {
		f := newQuizServiceFixture()

		_, err := f.service.Attempt(ctx, 7, &AttemptQuizRequest{Answers: []int{0, 2, 1}}, teacher)

		assert.True(t, IsForbidden(err))
	})
}

func TestScoreAnswers(t *testing.T) {
	questions := threeQuestionQuiz(30).Questions

	tests := []struct {
		name        string
		answers     []int
		wantScore   int
		wantCorrect int
	}{
		{"all correct", []int{0, 2, 1}, 100, 3},
		{"two of three", []int{0, 2, 0}, 67, 2},
		{"one of three", []int{0, 1, 0}, 33, 1},
		{"none correct", []int{1, 0, 2}, 0, 0},
		{"unanswered never match", []int{-1, -1, -1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, correct := scoreAnswers(questions, tt.answers)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantCorrect, correct)
		})
	}
}

func TestQuizService_Create_AnswerIndexValidation(t *testing.T) {
	ctx := context.Background()
	f := newQuizServiceFixture()

	req := &CreateQuizRequest{
		Title:  "Water quiz",
		Points: 20,
		Questions: []QuizQuestionRequest{
			{Question: "Q1", Options: []string{"a", "b"}, CorrectAnswer: 2},
		},
	}

	_, err := f.service.Create(ctx, req, teacher)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
