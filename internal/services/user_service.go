package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/cache"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"
)

const leaderboardTTL = 5 * time.Minute

// ===== REQUEST / RESPONSE STRUCTURES =====

type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=50"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

type AddPointsRequest struct {
	Points int    `json:"points" validate:"required,min=1"`
	Reason string `json:"reason"`
}

type SetPointsRequest struct {
	Points int `json:"points" validate:"min=0"`
}

type UserListFilters struct {
	Role     *models.UserRole
	IsActive *bool
	Limit    int
	Offset   int
}

// LeaderboardEntry is the cached leaderboard row shape.
type LeaderboardEntry struct {
	Rank           int            `json:"rank"`
	UserID         uint           `json:"userId"`
	Name           string         `json:"name"`
	Points         int            `json:"points"`
	TasksCompleted int            `json:"tasksCompleted"`
	QuizzesTaken   int            `json:"quizzesTaken"`
	Streak         int            `json:"streak"`
	Badges         datatypes.JSON `json:"badges,omitempty"`
}

// UserStats is the aggregate snapshot the admin dashboard reads.
type UserStats struct {
	TotalStudents int64 `json:"totalStudents"`
	TotalTeachers int64 `json:"totalTeachers"`
	TotalAdmins   int64 `json:"totalAdmins"`
}

// ===== SERVICE =====

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, p authz.Principal) (*models.User, error)
	List(ctx context.Context, filters UserListFilters, p authz.Principal) ([]*models.User, int64, error)
	Students(ctx context.Context, p authz.Principal) ([]*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Stats(ctx context.Context, p authz.Principal) (*UserStats, error)

	Approve(ctx context.Context, id uint, p authz.Principal) (*models.User, error)
	UpdateRole(ctx context.Context, id uint, req *UpdateRoleRequest, p authz.Principal) (*models.User, error)
	Deactivate(ctx context.Context, id uint, p authz.Principal) error
	Reactivate(ctx context.Context, id uint, p authz.Principal) error

	AddPoints(ctx context.Context, id uint, req *AddPointsRequest, p authz.Principal) (*models.User, error)
	SetPoints(ctx context.Context, id uint, req *SetPointsRequest, p authz.Principal) (*models.User, error)
	GetPoints(ctx context.Context, id uint) (int, error)

	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	StreakLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type userService struct {
	repo      repositories.Repository
	checker   *authz.Checker
	awarder   *PointsAwarder
	cache     cache.CacheService
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(
	repo repositories.Repository,
	checker *authz.Checker,
	awarder *PointsAwarder,
	cacheSvc cache.CacheService,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
) UserService {
	return &userService{
		repo:      repo,
		checker:   checker,
		awarder:   awarder,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== READS =====

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, p authz.Principal) (*models.User, error) {
	if !s.checker.Can(p, authz.ActionUserCreate, authz.Resource{Kind: "user"}) {
		return nil, NewPermissionError(p.ID, 0, "user", "create", "admin only")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Role:     role,
		IsActive: true,
		// Admin-created accounts skip the approval queue.
		IsApproved: true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "created_by", p.ID)
	return user, nil
}

func (s *userService) List(ctx context.Context, filters UserListFilters, p authz.Principal) ([]*models.User, int64, error) {
	if !s.checker.Can(p, authz.ActionUserList, authz.Resource{Kind: "user"}) {
		return nil, 0, NewPermissionError(p.ID, 0, "user", "list", "role not permitted")
	}
	return s.repo.User().List(ctx, repositories.UserFilters{
		Role:      filters.Role,
		IsActive:  filters.IsActive,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
}

func (s *userService) Students(ctx context.Context, p authz.Principal) ([]*models.User, error) {
	if !s.checker.Can(p, authz.ActionUserList, authz.Resource{Kind: "user"}) {
		return nil, NewPermissionError(p.ID, 0, "user", "list", "role not permitted")
	}
	role := models.RoleStudent
	active := true
	users, _, err := s.repo.User().List(ctx, repositories.UserFilters{
		Role:      &role,
		IsActive:  &active,
		SortBy:    "name",
		SortOrder: "asc",
	})
	return users, err
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Stats(ctx context.Context, p authz.Principal) (*UserStats, error) {
	if !s.checker.Can(p, authz.ActionUserStats, authz.Resource{Kind: "user"}) {
		return nil, NewPermissionError(p.ID, 0, "user", "stats", "role not permitted")
	}
	stats := &UserStats{}
	var err error
	if stats.TotalStudents, err = s.repo.User().CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, err
	}
	if stats.TotalTeachers, err = s.repo.User().CountByRole(ctx, models.RoleTeacher); err != nil {
		return nil, err
	}
	if stats.TotalAdmins, err = s.repo.User().CountByRole(ctx, models.RoleAdmin); err != nil {
		return nil, err
	}
	return stats, nil
}

// ===== ACCOUNT ADMINISTRATION =====

func (s *userService) Approve(ctx context.Context, id uint, p authz.Principal) (*models.User, error) {
	if !s.checker.Can(p, authz.ActionUserApprove, authz.Resource{Kind: "user", TargetUserID: id}) {
		return nil, NewPermissionError(p.ID, id, "user", "approve", "role not permitted")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsApproved {
		return user, nil
	}

	if err := s.repo.User().Approve(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	user.IsApproved = true

	if err := s.publisher.Publish(ctx, events.EventUserApproved, events.UserApprovedEvent{
		UserID:     id,
		ApprovedBy: p.ID,
	}); err != nil {
		s.logger.Error("Failed to publish user.approved event", "user_id", id, "error", err)
	}

	s.logger.Info("User approved", "user_id", id, "approved_by", p.ID)
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, id uint, req *UpdateRoleRequest, p authz.Principal) (*models.User, error) {
	// The self guard beats every role, admins included.
	if p.ID == id {
		return nil, ErrSelfModification
	}
	if !s.checker.Can(p, authz.ActionUserChangeRole, authz.Resource{Kind: "user", TargetUserID: id}) {
		return nil, NewPermissionError(p.ID, id, "user", "change_role", "admin only")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateRole(ctx, id, req.Role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = req.Role

	s.logger.Info("User role changed", "user_id", id, "role", req.Role, "changed_by", p.ID)
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, id uint, p authz.Principal) error {
	return s.setActive(ctx, id, false, p)
}

func (s *userService) Reactivate(ctx context.Context, id uint, p authz.Principal) error {
	return s.setActive(ctx, id, true, p)
}

func (s *userService) setActive(ctx context.Context, id uint, active bool, p authz.Principal) error {
	if p.ID == id {
		return ErrSelfModification
	}
	if !s.checker.Can(p, authz.ActionUserDeactivate, authz.Resource{Kind: "user", TargetUserID: id}) {
		return NewPermissionError(p.ID, id, "user", "deactivate", "admin only")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.User().SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}

	s.invalidateLeaderboards(ctx)
	s.logger.Info("User active flag changed", "user_id", id, "active", active, "changed_by", p.ID)
	return nil
}

// ===== POINTS =====

func (s *userService) AddPoints(ctx context.Context, id uint, req *AddPointsRequest, p authz.Principal) (*models.User, error) {
	if !s.checker.Can(p, authz.ActionUserAddPoints, authz.Resource{Kind: "user", TargetUserID: id}) {
		return nil, NewPermissionError(p.ID, id, "user", "add_points", "role not permitted")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual award"
	}

	user, err := s.awarder.Award(ctx, id, req.Points, 0, 0, reason)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) SetPoints(ctx context.Context, id uint, req *SetPointsRequest, p authz.Principal) (*models.User, error) {
	if !s.checker.Can(p, authz.ActionUserSetPoints, authz.Resource{Kind: "user", TargetUserID: id}) {
		return nil, NewPermissionError(p.ID, id, "user", "set_points", "role not permitted")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().SetPoints(ctx, id, req.Points)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set points: %w", err)
	}

	s.invalidateLeaderboards(ctx)
	s.logger.Info("User points overridden", "user_id", id, "points", req.Points, "set_by", p.ID)
	return user, nil
}

func (s *userService) GetPoints(ctx context.Context, id uint) (int, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// ===== LEADERBOARDS =====

func (s *userService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.cachedLeaderboard(ctx, cache.KeyLeaderboard, limit, s.repo.User().Leaderboard)
}

func (s *userService) StreakLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.cachedLeaderboard(ctx, cache.KeyStreakLeaderboard, limit, s.repo.User().StreakLeaderboard)
}

func (s *userService) cachedLeaderboard(
	ctx context.Context,
	key string,
	limit int,
	load func(context.Context, int) ([]*models.User, error),
) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []LeaderboardEntry
	if err := s.cache.Get(ctx, key, &entries); err == nil && len(entries) >= limit {
		return entries[:limit], nil
	}

	users, err := load(ctx, 100)
	if err != nil {
		return nil, err
	}
	entries = make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:           i + 1,
			UserID:         u.ID,
			Name:           u.Name,
			Points:         u.Points,
			TasksCompleted: u.TasksCompleted,
			QuizzesTaken:   u.QuizzesTaken,
			Streak:         u.Streak,
			Badges:         u.Badges,
		})
	}

	if err := s.cache.Set(ctx, key, entries, leaderboardTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", "key", key, "error", err)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *userService) invalidateLeaderboards(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyLeaderboard, cache.KeyStreakLeaderboard); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "error", err)
	}
}
