package postgres

import (
	"github.com/nexora-edu/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	user   repositories.UserRepository
	task   repositories.TaskRepository
	quiz   repositories.QuizRepository
	module repositories.ModuleRepository
}

// NewRepository wires all PostgreSQL stores behind the aggregate interface.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		user:   NewUserPostgreSQL(db),
		task:   NewTaskPostgreSQL(db),
		quiz:   NewQuizPostgreSQL(db),
		module: NewModulePostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository {
	return r.user
}

func (r *repository) Task() repositories.TaskRepository {
	return r.task
}

func (r *repository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *repository) Module() repositories.ModuleRepository {
	return r.module
}
