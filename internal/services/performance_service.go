package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
)

// ===== PROJECTION STRUCTURES =====

type SubmissionSummary struct {
	TaskID        uint                    `json:"taskId"`
	TaskTitle     string                  `json:"taskTitle"`
	Status        models.SubmissionStatus `json:"status"`
	PointsAwarded int                     `json:"pointsAwarded"`
	SubmittedAt   time.Time               `json:"submittedAt"`
}

type AttemptSummary struct {
	QuizID       uint      `json:"quizId"`
	QuizTitle    string    `json:"quizTitle"`
	Score        int       `json:"score"`
	PointsEarned int       `json:"pointsEarned"`
	CompletedAt  time.Time `json:"completedAt"`
}

// StudentPerformance is the reporting projection for one student.
type StudentPerformance struct {
	StudentID      uint                `json:"studentId"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Points         int                 `json:"points"`
	Streak         int                 `json:"streak"`
	TasksCompleted int                 `json:"tasksCompleted"`
	QuizzesTaken   int                 `json:"quizzesTaken"`
	AverageScore   int                 `json:"averageScore"`
	Submissions    []SubmissionSummary `json:"submissions"`
	Attempts       []AttemptSummary    `json:"attempts"`
}

// ===== SERVICE =====

type PerformanceService interface {
	// Report builds performance projections. Students are scoped to their own
	// record; teacher and admin see every active student.
	Report(ctx context.Context, p authz.Principal) ([]*StudentPerformance, error)
	// ExportXLSX renders the report as a spreadsheet, one summary sheet.
	ExportXLSX(ctx context.Context, p authz.Principal) ([]byte, error)
}

type performanceService struct {
	repo    repositories.Repository
	checker *authz.Checker
	logger  *slog.Logger
}

func NewPerformanceService(repo repositories.Repository, checker *authz.Checker, logger *slog.Logger) PerformanceService {
	return &performanceService{repo: repo, checker: checker, logger: logger}
}

func (s *performanceService) Report(ctx context.Context, p authz.Principal) ([]*StudentPerformance, error) {
	students, err := s.scopedStudents(ctx, p)
	if err != nil {
		return nil, err
	}

	report := make([]*StudentPerformance, 0, len(students))
	for _, student := range students {
		perf, err := s.buildStudentPerformance(ctx, student)
		if err != nil {
			return nil, err
		}
		report = append(report, perf)
	}
	return report, nil
}

func (s *performanceService) ExportXLSX(ctx context.Context, p authz.Principal) ([]byte, error) {
	if !s.checker.Can(p, authz.ActionPerformanceExport, authz.Resource{Kind: "performance"}) {
		return nil, NewPermissionError(p.ID, 0, "performance", "export", "role not permitted")
	}

	report, err := s.Report(ctx, p)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Performance"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Student ID", "Name", "Email", "Points", "Streak",
		"Tasks Completed", "Quizzes Taken", "Average Quiz Score",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, perf := range report {
		row := []interface{}{
			perf.StudentID,
			perf.Name,
			perf.Email,
			perf.Points,
			perf.Streak,
			perf.TasksCompleted,
			perf.QuizzesTaken,
			perf.AverageScore,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	s.logger.Info("Performance report exported", "students", len(report), "exported_by", p.ID)
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *performanceService) scopedStudents(ctx context.Context, p authz.Principal) ([]*models.User, error) {
	if s.checker.ScopeToSelf(p) {
		self, err := s.repo.User().GetByID(ctx, p.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return []*models.User{self}, nil
	}

	role := models.RoleStudent
	active := true
	students, _, err := s.repo.User().List(ctx, repositories.UserFilters{
		Role:      &role,
		IsActive:  &active,
		SortBy:    "points",
		SortOrder: "desc",
	})
	return students, err
}

func (s *performanceService) buildStudentPerformance(ctx context.Context, student *models.User) (*StudentPerformance, error) {
	subs, err := s.repo.Task().GetSubmissionsByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions for student %d: %w", student.ID, err)
	}
	attempts, err := s.repo.Quiz().GetAttemptsByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts for student %d: %w", student.ID, err)
	}

	perf := &StudentPerformance{
		StudentID:      student.ID,
		Name:           student.Name,
		Email:          student.Email,
		Points:         student.Points,
		Streak:         student.Streak,
		TasksCompleted: student.TasksCompleted,
		QuizzesTaken:   student.QuizzesTaken,
		Submissions:    make([]SubmissionSummary, 0, len(subs)),
		Attempts:       make([]AttemptSummary, 0, len(attempts)),
	}

	for _, sub := range subs {
		summary := SubmissionSummary{
			TaskID:        sub.TaskID,
			Status:        sub.Status,
			PointsAwarded: sub.PointsAwarded,
			SubmittedAt:   sub.SubmittedAt,
		}
		if sub.Task != nil {
			summary.TaskTitle = sub.Task.Title
		}
		perf.Submissions = append(perf.Submissions, summary)
	}

	scoreTotal := 0
	for _, attempt := range attempts {
		summary := AttemptSummary{
			QuizID:       attempt.QuizID,
			Score:        attempt.Score,
			PointsEarned: attempt.PointsEarned,
			CompletedAt:  attempt.CompletedAt,
		}
		if attempt.Quiz != nil {
			summary.QuizTitle = attempt.Quiz.Title
		}
		perf.Attempts = append(perf.Attempts, summary)
		scoreTotal += attempt.Score
	}
	if len(attempts) > 0 {
		perf.AverageScore = scoreTotal / len(attempts)
	}

	return perf, nil
}
