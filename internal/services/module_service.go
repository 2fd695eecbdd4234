package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"
)

// ===== REQUEST STRUCTURES =====

type CreateModuleRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=200"`
	Description string              `json:"description" validate:"required"`
	VideoURL    string              `json:"videoUrl" validate:"required,url"`
	Category    models.TaskCategory `json:"category" validate:"omitempty,task_category"`
}

type UpdateModuleRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,min=1"`
	VideoURL    *string              `json:"videoUrl" validate:"omitempty,url"`
	Category    *models.TaskCategory `json:"category" validate:"omitempty,task_category"`
}

// ===== SERVICE =====

type ModuleService interface {
	Create(ctx context.Context, req *CreateModuleRequest, p authz.Principal) (*models.Module, error)
	List(ctx context.Context) ([]*models.Module, error)
	GetByID(ctx context.Context, id uint) (*models.Module, error)
	Update(ctx context.Context, id uint, req *UpdateModuleRequest, p authz.Principal) (*models.Module, error)
	Delete(ctx context.Context, id uint, p authz.Principal) error
}

type moduleService struct {
	repo      repositories.Repository
	checker   *authz.Checker
	logger    *slog.Logger
	validator *validator.Validator
}

func NewModuleService(
	repo repositories.Repository,
	checker *authz.Checker,
	logger *slog.Logger,
	v *validator.Validator,
) ModuleService {
	return &moduleService{
		repo:      repo,
		checker:   checker,
		logger:    logger,
		validator: v,
	}
}

func (s *moduleService) Create(ctx context.Context, req *CreateModuleRequest, p authz.Principal) (*models.Module, error) {
	if !s.checker.Can(p, authz.ActionModuleCreate, authz.Resource{Kind: "module"}) {
		return nil, NewPermissionError(p.ID, 0, "module", "create", "role not permitted")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	module := &models.Module{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Category:    defaultCategory(req.Category),
		CreatedBy:   p.ID,
	}
	if err := s.repo.Module().Create(ctx, module); err != nil {
		return nil, err
	}

	s.logger.Info("Module created", "module_id", module.ID, "created_by", p.ID)
	return module, nil
}

func (s *moduleService) List(ctx context.Context) ([]*models.Module, error) {
	return s.repo.Module().List(ctx)
}

func (s *moduleService) GetByID(ctx context.Context, id uint) (*models.Module, error) {
	module, err := s.repo.Module().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

func (s *moduleService) Update(ctx context.Context, id uint, req *UpdateModuleRequest, p authz.Principal) (*models.Module, error) {
	module, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.checker.Can(p, authz.ActionModuleUpdate, authz.Resource{Kind: "module", ID: id, OwnerID: module.CreatedBy}) {
		return nil, NewPermissionError(p.ID, id, "module", "update", "not the creator")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = *req.Description
	}
	if req.VideoURL != nil {
		module.VideoURL = *req.VideoURL
	}
	if req.Category != nil {
		module.Category = *req.Category
	}

	if err := s.repo.Module().Update(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}
	return module, nil
}

func (s *moduleService) Delete(ctx context.Context, id uint, p authz.Principal) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if !s.checker.Can(p, authz.ActionModuleDelete, authz.Resource{Kind: "module", ID: id}) {
		return NewPermissionError(p.ID, id, "module", "delete", "role not permitted")
	}
	return s.repo.Module().Delete(ctx, id)
}
