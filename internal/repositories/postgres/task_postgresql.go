package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type TaskPostgreSQL struct {
	db *gorm.DB
}

func NewTaskPostgreSQL(db *gorm.DB) repositories.TaskRepository {
	return &TaskPostgreSQL{db: db}
}

func (t *TaskPostgreSQL) Create(ctx context.Context, task *models.Task) error {
	if err := t.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (t *TaskPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := t.db.WithContext(ctx).
		Preload("AssignedTo").
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TaskPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := t.db.WithContext(ctx).
		Preload("Creator").
		Preload("AssignedTo.Student").
		Preload("Submissions.Student").
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TaskPostgreSQL) Update(ctx context.Context, task *models.Task) error {
	return t.db.WithContext(ctx).
		Omit("Submissions", "AssignedTo").
		Save(task).Error
}

func (t *TaskPostgreSQL) Delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (t *TaskPostgreSQL) List(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	var tasks []*models.Task
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.is_active = ?", true)

	if filters.Category != nil {
		query = query.Where("tasks.category = ?", *filters.Category)
	}
	if filters.Difficulty != nil {
		query = query.Where("tasks.difficulty = ?", *filters.Difficulty)
	}
	if filters.CreatedBy != nil {
		query = query.Where("tasks.created_by = ?", *filters.CreatedBy)
	}
	if filters.AssignedTo != nil {
		// Tasks explicitly assigned to the student, plus open tasks with no
		// assignment rows at all.
		query = query.Where(
			"EXISTS (SELECT 1 FROM task_assignments ta WHERE ta.task_id = tasks.id AND ta.student_id = ?) "+
				"OR NOT EXISTS (SELECT 1 FROM task_assignments ta WHERE ta.task_id = tasks.id)",
			*filters.AssignedTo)
	}
	if filters.SubmissionStudentID != nil && filters.SubmissionStatus != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM task_submissions ts WHERE ts.task_id = tasks.id AND ts.student_id = ? AND ts.status = ?)",
			*filters.SubmissionStudentID, *filters.SubmissionStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("tasks.created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.
		Preload("Creator").
		Preload("AssignedTo.Student").
		Preload("Submissions.Student").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (t *TaskPostgreSQL) ReplaceAssignments(ctx context.Context, taskID uint, studentIDs []uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if len(studentIDs) == 0 {
			return nil
		}
		assignments := make([]models.TaskAssignment, 0, len(studentIDs))
		for _, id := range studentIDs {
			assignments = append(assignments, models.TaskAssignment{TaskID: taskID, StudentID: id})
		}
		return tx.Create(&assignments).Error
	})
}

// ===== SUBMISSION SUB-RECORDS =====

func (t *TaskPostgreSQL) GetSubmission(ctx context.Context, taskID, studentID uint) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	if err := t.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (t *TaskPostgreSQL) GetSubmissionByID(ctx context.Context, taskID, submissionID uint) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	if err := t.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", submissionID, taskID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (t *TaskPostgreSQL) CreateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	if err := t.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// UpdateSubmission saves the single submission row. Reviews and
// resubmissions scope their writes here so two reviewers working different
// submissions of one task cannot overwrite each other.
func (t *TaskPostgreSQL) UpdateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	return t.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("id = ?", sub.ID).
		Select("Description", "File", "Status", "Feedback", "PointsAwarded", "ReviewedBy", "ReviewedAt", "SubmittedAt").
		Updates(sub).Error
}

func (t *TaskPostgreSQL) GetSubmissionsByStudent(ctx context.Context, studentID uint) ([]*models.TaskSubmission, error) {
	var subs []*models.TaskSubmission
	if err := t.db.WithContext(ctx).
		Preload("Task").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
