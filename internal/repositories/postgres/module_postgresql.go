package postgres

import (
	"context"
	"fmt"

	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m *ModulePostgreSQL) Create(ctx context.Context, module *models.Module) error {
	if err := m.db.WithContext(ctx).Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (m *ModulePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Module, error) {
	var module models.Module
	if err := m.db.WithContext(ctx).Preload("Creator").First(&module, id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (m *ModulePostgreSQL) List(ctx context.Context) ([]*models.Module, error) {
	var modules []*models.Module
	if err := m.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (m *ModulePostgreSQL) Update(ctx context.Context, module *models.Module) error {
	return m.db.WithContext(ctx).Save(module).Error
}

func (m *ModulePostgreSQL) Delete(ctx context.Context, id uint) error {
	return m.db.WithContext(ctx).Delete(&models.Module{}, id).Error
}
