package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"
)

// ===== REQUEST STRUCTURES =====

type QuizQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0"`
	Explanation   string   `json:"explanation"`
}

type CreateQuizRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description string                `json:"description"`
	Category    models.TaskCategory   `json:"category" validate:"omitempty,task_category"`
	Points      int                   `json:"points" validate:"required,min=1"`
	TimeLimit   int                   `json:"timeLimit" validate:"omitempty,min=1,max=180"`
	Questions   []QuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type UpdateQuizRequest struct {
	Title       *string               `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string               `json:"description"`
	Category    *models.TaskCategory  `json:"category" validate:"omitempty,task_category"`
	Points      *int                  `json:"points" validate:"omitempty,min=1"`
	TimeLimit   *int                  `json:"timeLimit" validate:"omitempty,min=1,max=180"`
	Questions   []QuizQuestionRequest `json:"questions" validate:"omitempty,min=1,dive"`
}

type AttemptQuizRequest struct {
	Answers   []int `json:"answers" validate:"required"`
	TimeTaken int   `json:"timeTaken" validate:"omitempty,min=0"`
}

// ===== SERVICE =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, p authz.Principal) (*models.Quiz, error)
	List(ctx context.Context, category *models.TaskCategory, p authz.Principal) ([]*models.Quiz, int64, error)
	MyQuizzes(ctx context.Context, p authz.Principal) ([]*models.Quiz, error)
	GetByID(ctx context.Context, id uint, p authz.Principal) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, p authz.Principal) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, p authz.Principal) error

	Attempt(ctx context.Context, quizID uint, req *AttemptQuizRequest, p authz.Principal) (*models.QuizAttempt, error)
}

type quizService struct {
	repo      repositories.Repository
	checker   *authz.Checker
	awarder   *PointsAwarder
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(
	repo repositories.Repository,
	checker *authz.Checker,
	awarder *PointsAwarder,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
) QuizService {
	return &quizService{
		repo:      repo,
		checker:   checker,
		awarder:   awarder,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== CONTENT CRUD =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, p authz.Principal) (*models.Quiz, error) {
	if !s.checker.Can(p, authz.ActionQuizCreate, authz.Resource{Kind: "quiz"}) {
		return nil, NewPermissionError(p.ID, 0, "quiz", "create", "role not permitted")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateQuestionAnswers(req.Questions); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Category:    defaultCategory(req.Category),
		Points:      req.Points,
		TimeLimit:   defaultTimeLimit(req.TimeLimit),
		IsActive:    true,
		CreatedBy:   p.ID,
		Questions:   buildQuestions(req.Questions),
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "created_by", p.ID, "questions", len(quiz.Questions))
	return s.repo.Quiz().GetByIDWithDetails(ctx, quiz.ID)
}

func (s *quizService) List(ctx context.Context, category *models.TaskCategory, p authz.Principal) ([]*models.Quiz, int64, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{Category: category})
	if err != nil {
		return nil, 0, err
	}
	for _, quiz := range quizzes {
		s.scrubForStudent(quiz, p)
	}
	return quizzes, total, nil
}

func (s *quizService) MyQuizzes(ctx context.Context, p authz.Principal) ([]*models.Quiz, error) {
	quizzes, _, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{CreatedBy: &p.ID})
	return quizzes, err
}

func (s *quizService) GetByID(ctx context.Context, id uint, p authz.Principal) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	s.scrubForStudent(quiz, p)
	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, p authz.Principal) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !s.checker.Can(p, authz.ActionQuizUpdate, authz.Resource{Kind: "quiz", ID: id, OwnerID: quiz.CreatedBy}) {
		return nil, NewPermissionError(p.ID, id, "quiz", "update", "not the creator")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Category != nil {
		quiz.Category = *req.Category
	}
	if req.Points != nil {
		quiz.Points = *req.Points
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.Questions != nil {
		if err := validateQuestionAnswers(req.Questions); err != nil {
			return nil, err
		}
		quiz.Questions = buildQuestions(req.Questions)
	} else {
		quiz.Questions = nil
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	return s.repo.Quiz().GetByIDWithDetails(ctx, id)
}

func (s *quizService) Delete(ctx context.Context, id uint, p authz.Principal) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if !s.checker.Can(p, authz.ActionQuizDelete, authz.Resource{Kind: "quiz", ID: id, OwnerID: quiz.CreatedBy}) {
		return NewPermissionError(p.ID, id, "quiz", "delete", "not the creator")
	}

	return s.repo.Quiz().Delete(ctx, id)
}

// ===== ATTEMPT WORKFLOW =====

func (s *quizService) Attempt(ctx context.Context, quizID uint, req *AttemptQuizRequest, p authz.Principal) (*models.QuizAttempt, error) {
	if !s.checker.Can(p, authz.ActionQuizAttempt, authz.Resource{Kind: "quiz", ID: quizID}) {
		return nil, NewPermissionError(p.ID, quizID, "quiz", "attempt", "only students attempt quizzes")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizNoQuestions
	}
	if len(req.Answers) != len(quiz.Questions) {
		return nil, ErrAnswerCountInvalid
	}

	// One attempt per student, no resubmission path. Quizzes have no
	// rejected state, so this is deliberately stricter than tasks.
	if _, err := s.repo.Quiz().GetAttempt(ctx, quizID, p.ID); err == nil {
		return nil, ErrAlreadyAttempted
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up attempt: %w", err)
	}

	score, correct := scoreAnswers(quiz.Questions, req.Answers)
	pointsEarned := int(math.Round(float64(quiz.Points) * float64(score) / 100))

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	attempt := &models.QuizAttempt{
		QuizID:         quizID,
		StudentID:      p.ID,
		Answers:        answersJSON,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		PointsEarned:   pointsEarned,
		TimeTaken:      req.TimeTaken,
		CompletedAt:    time.Now(),
	}

	if err := s.repo.Quiz().CreateAttempt(ctx, attempt); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyAttempted
		}
		return nil, err
	}

	// Every completed attempt is credited, a zero score records a
	// zero-point credit and still bumps the quizzes counter.
	if _, err := s.awarder.Award(ctx, p.ID, pointsEarned, 0, 1, "quiz attempt"); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.EventAttemptCompleted, events.AttemptCompletedEvent{
		QuizID:       quizID,
		AttemptID:    attempt.ID,
		StudentID:    p.ID,
		Score:        score,
		PointsEarned: pointsEarned,
	}); err != nil {
		s.logger.Error("Failed to publish attempt.completed event", "quiz_id", quizID, "error", err)
	}

	s.logger.Info("Quiz attempted",
		"quiz_id", quizID,
		"student_id", p.ID,
		"score", score,
		"points_earned", pointsEarned)

	return attempt, nil
}

// ===== HELPERS =====

// scoreAnswers grades an answer array against the ordered questions.
// Unanswered questions are encoded as -1 and simply never match.
func scoreAnswers(questions []models.QuizQuestion, answers []int) (score, correct int) {
	for i, q := range questions {
		if answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score = int(math.Round(100 * float64(correct) / float64(len(questions))))
	return score, correct
}

// scrubForStudent hides answer keys from students who have not attempted
// the quiz yet.
func (s *quizService) scrubForStudent(quiz *models.Quiz, p authz.Principal) {
	if p.Role != models.RoleStudent {
		return
	}
	for _, attempt := range quiz.Attempts {
		if attempt.StudentID == p.ID {
			return
		}
	}
	for i := range quiz.Questions {
		quiz.Questions[i].CorrectAnswer = -1
		quiz.Questions[i].Explanation = ""
	}
}

func buildQuestions(reqs []QuizQuestionRequest) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(reqs))
	for i, q := range reqs {
		questions = append(questions, models.QuizQuestion{
			Position:      i,
			Text:          q.Question,
			Options:       mustJSON(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	return questions
}

func validateQuestionAnswers(reqs []QuizQuestionRequest) error {
	for i, q := range reqs {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return NewValidationError(
				fmt.Sprintf("questions[%d].correctAnswer", i),
				"must index one of the options",
				q.CorrectAnswer,
			)
		}
	}
	return nil
}

func defaultTimeLimit(limit int) int {
	if limit <= 0 {
		return 15
	}
	return limit
}
