package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := u.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Save(user).Error
}

func (u *UserPostgreSQL) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	return u.updateColumns(ctx, id, map[string]interface{}{"role": role})
}

func (u *UserPostgreSQL) SetActive(ctx context.Context, id uint, active bool) error {
	return u.updateColumns(ctx, id, map[string]interface{}{"is_active": active})
}

func (u *UserPostgreSQL) Approve(ctx context.Context, id uint) error {
	return u.updateColumns(ctx, id, map[string]interface{}{"is_approved": true})
}

func (u *UserPostgreSQL) UpdateStreak(ctx context.Context, id uint, streak int, date time.Time) error {
	return u.updateColumns(ctx, id, map[string]interface{}{
		"streak":           streak,
		"last_streak_date": date,
	})
}

// IncrementPoints runs a single UPDATE with column expressions so concurrent
// credits against the same user are serialized by the database, never lost to
// a read-modify-write race.
func (u *UserPostgreSQL) IncrementPoints(ctx context.Context, id uint, points, tasksCompleted, quizzesTaken int) (*models.User, error) {
	updates := map[string]interface{}{}
	if points != 0 {
		updates["points"] = gorm.Expr("points + ?", points)
	}
	if tasksCompleted != 0 {
		updates["tasks_completed"] = gorm.Expr("tasks_completed + ?", tasksCompleted)
	}
	if quizzesTaken != 0 {
		updates["quizzes_taken"] = gorm.Expr("quizzes_taken + ?", quizzesTaken)
	}

	if len(updates) > 0 {
		result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to increment points: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return u.GetByID(ctx, id)
}

func (u *UserPostgreSQL) SetPoints(ctx context.Context, id uint, points int) (*models.User, error) {
	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("points", points)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to set points: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return u.GetByID(ctx, id)
}

func (u *UserPostgreSQL) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	return u.rankedStudents(ctx, "points DESC, name ASC", limit)
}

func (u *UserPostgreSQL) StreakLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	return u.rankedStudents(ctx, "streak DESC, points DESC", limit)
}

func (u *UserPostgreSQL) ActiveStudentsExist(ctx context.Context, ids []uint) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ? AND role = ? AND is_active = ?", ids, models.RoleStudent, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == int64(len(ids)), nil
}

func (u *UserPostgreSQL) rankedStudents(ctx context.Context, order string, limit int) ([]*models.User, error) {
	var users []*models.User
	query := u.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleStudent, true).
		Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserPostgreSQL) updateColumns(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
